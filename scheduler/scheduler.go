// Package scheduler 驱动周期性后台任务：热点重算、批量重训练、缓存清理等。
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
)

// Task 是一个周期任务。Run 返回错误只记日志，下一个周期照常重试。
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler 管理一组周期任务，每个任务独立计时、互不阻塞。
//
// 生命周期：Add 注册（Start 之前）→ Start 启动 → Stop 取消并等待退出。
// Trigger 立即执行一次指定任务，用于按需触发和确定性测试，
// 不依赖真实时钟走表。
type Scheduler struct {
	mu    sync.Mutex
	tasks []*Task

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger

	started bool
}

func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		log: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Add 注册一个周期任务。Interval <= 0 的任务只能靠 Trigger 执行。
func (s *Scheduler) Add(task *Task) {
	if task == nil || task.Name == "" || task.Run == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Start 为每个任务启动独立的计时循环。重复调用是空操作。
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, task := range s.tasks {
		if task.Interval <= 0 {
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, task)
	}
	s.log.Info().Int("tasks", len(s.tasks)).Msg("scheduler started")
}

// Stop 取消所有任务并等待在途执行结束。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// Trigger 立即执行一次指定任务。未注册的任务返回 NOT_FOUND。
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	var task *Task
	for _, t := range s.tasks {
		if t.Name == name {
			task = t
			break
		}
	}
	s.mu.Unlock()

	if task == nil {
		return core.NewDomainError("scheduler", core.ErrorCodeNotFound, "unknown task: "+name)
	}
	return s.run(ctx, task)
}

func (s *Scheduler) loop(ctx context.Context, task *Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 任务失败不中断循环，下一个周期重试
			_ = s.run(ctx, task)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, task *Task) error {
	start := time.Now()
	err := task.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("task", task.Name).Msg("scheduled task failed")
		return err
	}
	s.log.Debug().Str("task", task.Name).Dur("elapsed", time.Since(start)).Msg("scheduled task completed")
	return nil
}
