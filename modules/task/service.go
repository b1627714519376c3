package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/domain/user"
	"github.com/example/task-board/events"
	"github.com/example/task-board/modules/auth"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// UserDirectory resolves user ids to names.
type UserDirectory interface {
	ListUsers(ctx context.Context, ids []string) ([]auth.UserResponse, error)
}

// ViewCache stores task views by key. *cache.Cache satisfies it.
type ViewCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Notifier is told about every committed task change.
type Notifier interface {
	TaskChanged(ev events.TaskChangedEvent)
}

// TaskService implements task use cases on top of the guard in domain/task.
type TaskService struct {
	repo     *TaskRepository
	users    UserDirectory
	cache    ViewCache
	notifier Notifier
	logger   types.Logger
	now      func() time.Time
	sfGroup  singleflight.Group
	changes  [changeStripes]atomic.Uint64
}

// changeStripes bounds the per-task change counters; ids sharing a stripe
// only cost each other an extra cache delete.
const changeStripes = 256

// NewTaskService creates a new TaskService. users, cache and notifier may be nil.
func NewTaskService(repo *TaskRepository, users UserDirectory, cache ViewCache, notifier Notifier, logger types.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		users:    users,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func cacheKey(id string) string {
	return "id:" + id
}

// Create stores a new Todo task owned by the actor.
func (s *TaskService) Create(ctx context.Context, actor user.Actor, draft domain.Draft) (*TaskView, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: creator is required", domain.ErrValidation)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	t := domain.New(uuid.New().String(), actor.UserID, draft, s.now())
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.notify(t, events.ActionCreated, actor)
	s.logger.Info("Task created", "taskID", t.ID, "creatorID", t.CreatorID)
	return s.view(ctx, t), nil
}

// Get returns a task view, reading through the cache when one is configured.
func (s *TaskService) Get(ctx context.Context, id string) (*TaskView, error) {
	if s.cache != nil {
		var cached TaskView
		found, err := s.cache.Get(ctx, cacheKey(id), &cached)
		if err != nil {
			s.logger.Warn("Cache read failed", "taskID", id, "error", err)
		}
		if found {
			return &cached, nil
		}
	}

	// waiters share one load, so it must outlive any single caller's cancellation
	val, err, _ := s.sfGroup.Do(id, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), id)
	})
	if err != nil {
		return nil, err
	}
	return val.(*TaskView), nil
}

// load reads a task view from the database and caches it. If a change to the
// task committed while the view was being built, the cached copy is dropped
// again so it cannot outlive that change's invalidation.
func (s *TaskService) load(ctx context.Context, id string) (*TaskView, error) {
	counter := s.changeCounter(id)
	seen := counter.Load()

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(ctx, t)

	if s.cache == nil {
		return v, nil
	}
	if err := s.cache.Set(ctx, cacheKey(id), v); err != nil {
		s.logger.Warn("Cache write failed", "taskID", id, "error", err)
		return v, nil
	}
	if counter.Load() != seen {
		s.dropCached(ctx, id)
	}
	return v, nil
}

// List returns tasks newest first. statusName is matched case-insensitively
// and an unknown name is a validation error.
func (s *TaskService) List(ctx context.Context, statusName, assigneeID string) ([]TaskView, error) {
	var filter domain.Filter
	if statusName != "" {
		st, err := domain.ParseStatus(statusName)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}
	filter.AssigneeID = assigneeID

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.views(ctx, tasks), nil
}

// Update applies a partial update. The load, the authorization and transition
// checks and the write share one transaction; a rejected update writes nothing.
func (s *TaskService) Update(ctx context.Context, actor user.Actor, id string, patch domain.Patch) (*TaskView, error) {
	if patch.Title.Set {
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}

	before := domain.StatusTodo
	updated, err := s.repo.Update(ctx, id, func(current *domain.Task) (domain.Task, error) {
		before = current.Status
		return domain.Mutate(actor, current, patch, s.now())
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.invalidate(ctx, id)
	s.notify(updated, events.ActionUpdated, actor)
	if updated.Status != before {
		s.logger.Info("Task status changed", "taskID", id, "from", before, "to", updated.Status)
	}
	return s.view(ctx, updated), nil
}

// Delete hard-deletes a task the actor is allowed to modify.
func (s *TaskService) Delete(ctx context.Context, actor user.Actor, id string) error {
	deleted, err := s.repo.Delete(ctx, id, func(current *domain.Task) error {
		return domain.AuthorizeMutation(actor, current)
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.invalidate(ctx, id)
	s.notify(deleted, events.ActionDeleted, actor)
	s.logger.Info("Task deleted", "taskID", id, "actorID", actor.UserID)
	return nil
}

func (s *TaskService) changeCounter(id string) *atomic.Uint64 {
	return &s.changes[xxhash.Sum64String(id)%changeStripes]
}

// invalidate records a committed change and removes the cached view. The
// change is already durable, so a cancelled request must not skip the delete.
func (s *TaskService) invalidate(ctx context.Context, id string) {
	s.changeCounter(id).Add(1)
	s.dropCached(context.WithoutCancel(ctx), id)
}

func (s *TaskService) dropCached(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("Cache invalidation failed", "taskID", id, "error", err)
	}
}

func (s *TaskService) notify(t *domain.Task, action string, actor user.Actor) {
	if s.notifier == nil {
		return
	}
	s.notifier.TaskChanged(events.TaskChangedEvent{
		TaskID:    t.ID,
		Action:    action,
		ActorID:   actor.UserID,
		Status:    t.Status.String(),
		Timestamp: s.now(),
	})
}

func (s *TaskService) view(ctx context.Context, t *domain.Task) *TaskView {
	v := s.views(ctx, []domain.Task{*t})
	return &v[0]
}

// views builds task views, resolving every referenced user in one lookup.
// Names stay empty when the directory is unavailable.
func (s *TaskService) views(ctx context.Context, tasks []domain.Task) []TaskView {
	names := s.userNames(ctx, tasks)

	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := TaskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			AssigneeID:  t.AssigneeID,
			CreatorID:   t.CreatorID,
			CreatorName: names[t.CreatorID],
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if t.AssigneeID != nil {
			v.AssigneeName = names[*t.AssigneeID]
		}
		out = append(out, v)
	}
	return out
}

func (s *TaskService) userNames(ctx context.Context, tasks []domain.Task) map[string]string {
	if s.users == nil || len(tasks) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, t := range tasks {
		add(t.CreatorID)
		if t.AssigneeID != nil {
			add(*t.AssigneeID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.ListUsers(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve user names", "error", err)
		return nil
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrTaskNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrValidation)
}
