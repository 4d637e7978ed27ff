package snowflake

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once

	errInvalidNodeID      = errors.New("invalid snowflake node id")
	errGeneratorUninitial = errors.New("snowflake generator is not initialized")
)

// Init 节点号 0~1023，多实例部署时需各不相同
func Init(nodeID int64) error {
	var initErr error

	once.Do(func() {
		if nodeID < 0 || nodeID > 1023 {
			initErr = errInvalidNodeID
			return
		}

		var err error
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			initErr = err
			return
		}
	})

	return initErr
}

func NextID() (int64, error) {
	if node == nil {
		return 0, errGeneratorUninitial
	}

	return node.Generate().Int64(), nil
}

// NextString base36 编码，适合放在响应头中
func NextString() (string, error) {
	if node == nil {
		return "", errGeneratorUninitial
	}

	return node.Generate().Base36(), nil
}
