package node

import "errors"

var ErrNotConnected = errors.New("nats 未连接")
