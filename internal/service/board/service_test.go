package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"social_profile_server/internal/dao/mysql/repository/repotest"
	"social_profile_server/internal/service/moderation"
	"social_profile_server/internal/service/notification"
	"social_profile_server/pkg/errorx"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []notification.Event
}

func (e *recordingEmitter) Emit(ctx context.Context, ev notification.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func newService(users ...string) (*boardService, *repotest.Store, *recordingEmitter) {
	store := repotest.NewStore()
	for _, u := range users {
		store.AddUser(u, u)
	}
	repos := store.Repositories()
	em := &recordingEmitter{}
	return NewBoardService(repos, moderation.NewModerationService(repos, nil), em), store, em
}

func TestPostNotifiesOwner(t *testing.T) {
	svc, _, em := newService("A", "B")
	c, err := svc.Post(context.Background(), "A", "B", "  hi  ", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if c.Text != "hi" || c.ID == 0 {
		t.Fatalf("comment = %+v", c)
	}
	if len(em.events) != 1 || em.events[0].Type != notification.EventBoardComment || em.events[0].TargetId != "B" {
		t.Fatalf("events = %+v", em.events)
	}
}

func TestPostOnOwnBoardIsSilent(t *testing.T) {
	svc, _, em := newService("A")
	if _, err := svc.Post(context.Background(), "A", "A", "note to self", nil); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(em.events) != 0 {
		t.Fatalf("unexpected events %+v", em.events)
	}
}

func TestReplyNotifiesParentAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _, em := newService("A", "B", "C")
	parent, err := svc.Post(ctx, "A", "B", "first", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	em.events = nil

	if _, err := svc.Post(ctx, "C", "B", "reply", &parent.ID); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if len(em.events) != 2 {
		t.Fatalf("events = %+v", em.events)
	}
	reply := em.events[1]
	if reply.Type != notification.EventBoardReply || reply.TargetId != "A" || reply.Extra["boardOwner"] != "B" {
		t.Fatalf("reply event = %+v", reply)
	}

	// 主人回复时只通知原作者一次
	em.events = nil
	if _, err := svc.Post(ctx, "B", "B", "owner reply", &parent.ID); err != nil {
		t.Fatalf("owner reply: %v", err)
	}
	if len(em.events) != 1 || em.events[0].Type != notification.EventBoardReply {
		t.Fatalf("owner reply events = %+v", em.events)
	}
}

func TestPostValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("A", "B")
	other := store.AddComment("A", "A", "elsewhere", time.Now())

	if _, err := svc.Post(ctx, "A", "B", "   ", nil); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("empty text: %v", err)
	}
	if _, err := svc.Post(ctx, "A", "ghost", "hi", nil); !errors.Is(err, errorx.ErrUserNotExist) {
		t.Fatalf("unknown owner: %v", err)
	}
	missing := uint64(999)
	if _, err := svc.Post(ctx, "A", "B", "hi", &missing); !errors.Is(err, errorx.ErrCommentNotFound) {
		t.Fatalf("missing parent: %v", err)
	}
	if _, err := svc.Post(ctx, "A", "B", "hi", &other.ID); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("parent on another board: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService("A", "B")
	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.Post(ctx, "A", "B", text, nil); err != nil {
			t.Fatalf("Post: %v", err)
		}
	}
	page, err := svc.List(ctx, "B", 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Items[0].Text != "three" {
		t.Fatalf("page = %+v", page)
	}
	page, _ = svc.List(ctx, "B", 2, 2)
	if len(page.Items) != 1 || page.Items[0].Text != "one" {
		t.Fatalf("second page = %+v", page)
	}
}

func TestDeletePermissions(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("A", "B", "C")
	c, _ := svc.Post(ctx, "A", "B", "hi", nil)

	if err := svc.Delete(ctx, "C", c.ID); !errors.Is(err, errorx.ErrForbidden) {
		t.Fatalf("stranger delete: %v", err)
	}
	if err := svc.Delete(ctx, "B", c.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := store.Comment(c.ID); ok {
		t.Fatalf("comment still present")
	}
	if err := svc.Delete(ctx, "B", c.ID); !errors.Is(err, errorx.ErrCommentNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestDeleteKeepsRepliesAsTopLevel(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService("A", "B", "C")
	parent, err := svc.Post(ctx, "A", "B", "first", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	reply, err := svc.Post(ctx, "C", "B", "reply", &parent.ID)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	if err := svc.Delete(ctx, "A", parent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, ok := store.Comment(reply.ID)
	if !ok {
		t.Fatalf("reply should survive parent deletion")
	}
	if got.ParentId != nil {
		t.Fatalf("reply still points at deleted parent %d", *got.ParentId)
	}
}
