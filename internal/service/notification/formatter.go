// Package notification 负责把业务事件格式化为通知文案并交给投递通道
// 投递管道本身不在本服务内，这里只保证"发出"，不保证"送达"
package notification

import (
	"fmt"
	"time"

	"social_profile_server/pkg/errorx"
)

// EventType 通知事件类型
type EventType string

const (
	EventFriendRequest EventType = "friend_request" // 收到好友申请
	EventFriendAccept  EventType = "friend_accept"  // 好友申请被接受
	EventBoardComment  EventType = "board_comment"  // 留言板收到新留言
	EventBoardReply    EventType = "board_reply"    // 留言被回复
)

// Event 业务事件
type Event struct {
	Type     EventType
	ActorId  string            // 触发者
	TargetId string            // 接收者
	Extra    map[string]string // 附加信息，如 commentId、boardOwner
}

// Message 格式化后的通知
type Message struct {
	Type      EventType `json:"type"`
	ActorId   string    `json:"actorId"`
	TargetId  string    `json:"targetId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}

// Formatter 通知文案格式化
type Formatter struct{}

// Format 生成通知文案，actorName 为空时使用 actorId
func (Formatter) Format(ev Event, actorName string) (*Message, error) {
	if actorName == "" {
		actorName = ev.ActorId
	}
	msg := &Message{
		Type:      ev.Type,
		ActorId:   ev.ActorId,
		TargetId:  ev.TargetId,
		CreatedAt: time.Now(),
	}
	switch ev.Type {
	case EventFriendRequest:
		msg.Title = "新的好友申请"
		msg.Body = fmt.Sprintf("%s 想加你为好友", actorName)
		msg.Link = "/friend/list"
	case EventFriendAccept:
		msg.Title = "好友申请已通过"
		msg.Body = fmt.Sprintf("%s 接受了你的好友申请", actorName)
		msg.Link = "/profile/" + ev.ActorId
	case EventBoardComment:
		msg.Title = "留言板有新留言"
		msg.Body = fmt.Sprintf("%s 在你的留言板上留言", actorName)
		msg.Link = boardLink(ev.TargetId, ev.Extra["commentId"])
	case EventBoardReply:
		msg.Title = "留言收到回复"
		msg.Body = fmt.Sprintf("%s 回复了你的留言", actorName)
		msg.Link = boardLink(ev.Extra["boardOwner"], ev.Extra["commentId"])
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "未知通知类型 %s", ev.Type)
	}
	return msg, nil
}

func boardLink(owner, commentId string) string {
	link := "/board/" + owner
	if commentId != "" {
		link += "#comment-" + commentId
	}
	return link
}
