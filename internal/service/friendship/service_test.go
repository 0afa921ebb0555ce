package friendship

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"social_profile_server/internal/dao/mysql/repository/repotest"
	"social_profile_server/internal/dao/redis/redistest"
	"social_profile_server/internal/jobs"
	"social_profile_server/internal/model"
	"social_profile_server/internal/service/friendcache"
	"social_profile_server/internal/service/notification"
	"social_profile_server/pkg/errorx"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.FriendCacheSyncPayload
	err  error
}

func (q *recordingQueue) Submit(ctx context.Context, t jobs.Type, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if p, ok := payload.(jobs.FriendCacheSyncPayload); ok && t == jobs.TypeFriendCacheSync {
		q.jobs = append(q.jobs, p)
	}
	return nil
}

func (q *recordingQueue) synced() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var ids []string
	for _, p := range q.jobs {
		ids = append(ids, p.UserId)
	}
	return ids
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []notification.Event
}

func (e *recordingEmitter) Emit(ctx context.Context, ev notification.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) all() []notification.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notification.Event(nil), e.events...)
}

type fixture struct {
	store    *repotest.Store
	cache    *redistest.FriendCache
	queue    *recordingQueue
	notifier *recordingEmitter
	svc      *friendshipService
}

func newFixture(users ...string) *fixture {
	store := repotest.NewStore()
	for _, id := range users {
		store.AddUser(id, "nick-"+id)
	}
	repos := store.Repositories()
	cache := redistest.NewFriendCache()
	queue := &recordingQueue{}
	notifier := &recordingEmitter{}
	syncer := friendcache.NewSyncer(repos, cache)
	return &fixture{
		store:    store,
		cache:    cache,
		queue:    queue,
		notifier: notifier,
		svc:      NewFriendshipService(repos, cache, queue, syncer, notifier),
	}
}

func TestSendRequestToSelf(t *testing.T) {
	f := newFixture("A")
	_, err := f.svc.SendRequest(context.Background(), "A", "A")
	if !errors.Is(err, errorx.ErrInvalidTarget) {
		t.Fatalf("err = %v", err)
	}
}

func TestSendRequestUnknownOrDisabledUser(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	if _, err := f.svc.SendRequest(ctx, "A", "Z"); !errors.Is(err, errorx.ErrUserNotExist) {
		t.Fatalf("unknown user err = %v", err)
	}
	f.store.AddUser("D", "disabled").Status = model.UserStatusDisable
	if _, err := f.svc.SendRequest(ctx, "A", "D"); !errors.Is(err, errorx.ErrUserNotExist) {
		t.Fatalf("disabled user err = %v", err)
	}
	if f.store.RelationshipCount() != 0 {
		t.Fatalf("no row should be written")
	}
}

func TestSendRequestCreatesRequestAndNotifies(t *testing.T) {
	f := newFixture("A", "B")
	view, err := f.svc.SendRequest(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if view != model.ViewRequestedByA {
		t.Fatalf("view = %s", view)
	}
	events := f.notifier.all()
	if len(events) != 1 || events[0].Type != notification.EventFriendRequest || events[0].TargetId != "B" {
		t.Fatalf("events = %+v", events)
	}
	if len(f.queue.synced()) != 0 {
		t.Fatalf("a pending request must not touch the cache")
	}
}

func TestSendRequestIsIdempotent(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		view, err := f.svc.SendRequest(ctx, "A", "B")
		if err != nil || view != model.ViewRequestedByA {
			t.Fatalf("SendRequest #%d = %s, %v", i, view, err)
		}
	}
	if f.store.RelationshipCount() != 1 {
		t.Fatalf("rows = %d", f.store.RelationshipCount())
	}
	if len(f.notifier.all()) != 1 {
		t.Fatalf("repeat request must not notify again")
	}
}

func TestMutualRequestsBecomeAccepted(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	if _, err := f.svc.SendRequest(ctx, "A", "B"); err != nil {
		t.Fatalf("A->B: %v", err)
	}
	view, err := f.svc.SendRequest(ctx, "B", "A")
	if err != nil {
		t.Fatalf("B->A: %v", err)
	}
	if view != model.ViewAccepted {
		t.Fatalf("view = %s", view)
	}
	rel, _ := f.store.Relationship("A", "B")
	if rel.State != model.RelationAccepted {
		t.Fatalf("state = %s", rel.State)
	}
	events := f.notifier.all()
	if len(events) != 2 || events[1].Type != notification.EventFriendAccept || events[1].TargetId != "A" {
		t.Fatalf("events = %+v", events)
	}
	if got := f.queue.synced(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("synced = %v", got)
	}

	// 已是好友后再次申请为幂等
	view, err = f.svc.SendRequest(ctx, "A", "B")
	if err != nil || view != model.ViewAccepted {
		t.Fatalf("repeat after accept = %s, %v", view, err)
	}
}

func TestConcurrentInsertRetriesIntoAccept(t *testing.T) {
	f := newFixture("A", "B")
	// 模拟 B 的申请在 A 读取之后、插入之前提交
	var once sync.Once
	f.store.BeforeRelationshipCreate = func(rel *model.Relationship) {
		once.Do(func() {
			f.store.InsertRelationship(model.NewRelationshipRequest("B", "A"))
		})
	}
	view, err := f.svc.SendRequest(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if view != model.ViewAccepted {
		t.Fatalf("view = %s", view)
	}
	if f.store.RelationshipCount() != 1 {
		t.Fatalf("rows = %d", f.store.RelationshipCount())
	}
}

func TestConcurrentOppositeRequests(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); _, errs[0] = f.svc.SendRequest(ctx, "A", "B") }()
	go func() { defer wg.Done(); _, errs[1] = f.svc.SendRequest(ctx, "B", "A") }()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("SendRequest: %v", err)
		}
	}
	view, _ := f.svc.GetRelationship(ctx, "A", "B")
	if view != model.ViewAccepted {
		t.Fatalf("view = %s", view)
	}
}

func TestAcceptRequest(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	if _, err := f.svc.SendRequest(ctx, "A", "B"); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	// 申请人不能替对方同意
	if err := f.svc.AcceptRequest(ctx, "A", "B"); !errors.Is(err, errorx.ErrNoSuchRequest) {
		t.Fatalf("accept own request err = %v", err)
	}
	if err := f.svc.AcceptRequest(ctx, "B", "A"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	view, _ := f.svc.GetRelationship(ctx, "B", "A")
	if view != model.ViewAccepted {
		t.Fatalf("view = %s", view)
	}
	events := f.notifier.all()
	last := events[len(events)-1]
	if last.Type != notification.EventFriendAccept || last.ActorId != "B" || last.TargetId != "A" {
		t.Fatalf("accept event = %+v", last)
	}
	if got := f.queue.synced(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("synced = %v", got)
	}
}

func TestAcceptWithoutRequest(t *testing.T) {
	f := newFixture("A", "B")
	if err := f.svc.AcceptRequest(context.Background(), "B", "A"); !errors.Is(err, errorx.ErrNoSuchRequest) {
		t.Fatalf("err = %v", err)
	}
}

func TestIgnoreRequest(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	if _, err := f.svc.SendRequest(ctx, "A", "B"); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := f.svc.IgnoreRequest(ctx, "B", "A"); err != nil {
		t.Fatalf("IgnoreRequest: %v", err)
	}
	view, _ := f.svc.GetRelationship(ctx, "A", "B")
	if view != model.ViewNone {
		t.Fatalf("view = %s", view)
	}
	if len(f.notifier.all()) != 1 {
		t.Fatalf("ignore must not notify")
	}
	// 再次忽略为幂等
	if err := f.svc.IgnoreRequest(ctx, "B", "A"); err != nil {
		t.Fatalf("second IgnoreRequest: %v", err)
	}
	// 被忽略后可以重新申请
	view, err := f.svc.SendRequest(ctx, "A", "B")
	if err != nil || view != model.ViewRequestedByA {
		t.Fatalf("re-request = %s, %v", view, err)
	}
}

func TestIgnoreDoesNotTouchFriends(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B")
	_ = f.svc.AcceptRequest(ctx, "B", "A")
	if err := f.svc.IgnoreRequest(ctx, "B", "A"); err != nil {
		t.Fatalf("IgnoreRequest: %v", err)
	}
	if view, _ := f.svc.GetRelationship(ctx, "A", "B"); view != model.ViewAccepted {
		t.Fatalf("view = %s", view)
	}
}

func TestRemoveFriend(t *testing.T) {
	f := newFixture("A", "B", "C")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B")
	_ = f.svc.AcceptRequest(ctx, "B", "A")
	_, _ = f.svc.SendRequest(ctx, "A", "C")
	_ = f.svc.AcceptRequest(ctx, "C", "A")

	if err := f.svc.RemoveFriend(ctx, "B", "A"); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}
	lists, err := f.svc.GetFriends(ctx, "A")
	if err != nil {
		t.Fatalf("GetFriends: %v", err)
	}
	if !reflect.DeepEqual(lists.Friends, []string{"C"}) {
		t.Fatalf("friends = %v", lists.Friends)
	}
	synced := f.queue.synced()
	if got := synced[len(synced)-2:]; !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("synced = %v", synced)
	}
	// 再次解除为幂等，且不再投递同步
	if err := f.svc.RemoveFriend(ctx, "A", "B"); err != nil {
		t.Fatalf("second RemoveFriend: %v", err)
	}
	if len(f.queue.synced()) != len(synced) {
		t.Fatalf("no-op remove must not enqueue sync")
	}
}

func TestRemoveFriendIgnoresPendingRequest(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B")
	if err := f.svc.RemoveFriend(ctx, "A", "B"); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}
	if view, _ := f.svc.GetRelationship(ctx, "A", "B"); view != model.ViewRequestedByA {
		t.Fatalf("pending request must stay, view = %s", view)
	}
}

func TestGetFriendsSplitsLists(t *testing.T) {
	f := newFixture("A", "B", "C", "D", "E")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B") // 发出
	_, _ = f.svc.SendRequest(ctx, "C", "A") // 收到
	_, _ = f.svc.SendRequest(ctx, "A", "D")
	_ = f.svc.AcceptRequest(ctx, "D", "A") // 好友
	_, _ = f.svc.SendRequest(ctx, "E", "A") // 收到

	lists, err := f.svc.GetFriends(ctx, "A")
	if err != nil {
		t.Fatalf("GetFriends: %v", err)
	}
	want := &FriendLists{Friends: []string{"D"}, Incoming: []string{"C", "E"}, Outgoing: []string{"B"}}
	if !reflect.DeepEqual(lists, want) {
		t.Fatalf("lists = %+v, want %+v", lists, want)
	}
}

func TestGetRelationshipViewIsRelativeToArguments(t *testing.T) {
	f := newFixture("A", "B")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B")
	if v, _ := f.svc.GetRelationship(ctx, "A", "B"); v != model.ViewRequestedByA {
		t.Fatalf("(A,B) = %s", v)
	}
	if v, _ := f.svc.GetRelationship(ctx, "B", "A"); v != model.ViewRequestedByB {
		t.Fatalf("(B,A) = %s", v)
	}
}

func TestQueueFailureFallsBackToInlineSync(t *testing.T) {
	f := newFixture("A", "B")
	f.queue.err = errorx.Wrap(errors.New("broker down"), errorx.CodeQueueError, "submit")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B")
	if err := f.svc.AcceptRequest(ctx, "B", "A"); err != nil {
		t.Fatalf("committed accept must not fail: %v", err)
	}
	if got, ok := f.cache.Snapshot("A"); !ok || !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("cache[A] = %v", got)
	}
	if got, ok := f.cache.Snapshot("B"); !ok || !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("cache[B] = %v", got)
	}
}

func TestAreFriendsUsesCacheThenStore(t *testing.T) {
	f := newFixture("A", "B", "C")
	ctx := context.Background()
	_, _ = f.svc.SendRequest(ctx, "A", "B")
	_ = f.svc.AcceptRequest(ctx, "B", "A")

	// 缓存没有数据时回源数据库
	ok, err := f.svc.AreFriends(ctx, "A", "B")
	if err != nil || !ok {
		t.Fatalf("AreFriends(store) = %v, %v", ok, err)
	}

	// 缓存命中时以缓存为准
	_ = f.cache.ReplaceFriends(ctx, "A", []string{"C"})
	if ok, _ := f.svc.AreFriends(ctx, "A", "C"); !ok {
		t.Fatalf("cache hit should be trusted")
	}

	// 缓存不可用时回源数据库
	f.cache.Err = errors.New("redis down")
	ok, err = f.svc.AreFriends(ctx, "A", "C")
	if err != nil || ok {
		t.Fatalf("AreFriends(fallback) = %v, %v", ok, err)
	}
	n, err := f.svc.FriendCount(ctx, "A")
	if err != nil || n != 1 {
		t.Fatalf("FriendCount(fallback) = %d, %v", n, err)
	}
}
