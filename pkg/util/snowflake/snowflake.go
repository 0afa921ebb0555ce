// Package snowflake 为后台任务生成全局唯一 ID
package snowflake

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultMachineID int64 = 1

var (
	node *snowflake.Node
	mu   sync.Mutex
)

// Init 按节点 ID 初始化发号器，取值范围 0-1023
// 同一 Kafka 消费组内的每个进程应使用不同的节点 ID
func Init(machineID int64) error {
	n, err := snowflake.NewNode(machineID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", machineID, err)
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// GenerateID 生成任务 ID，未初始化时使用默认节点
func GenerateID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(defaultMachineID)
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
