package cron

import (
	"Inkwell/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine            *cron.Cron
	reconcileSpec     string
	reactionReconcile *job.ReactionReconcileJob
}

func NewCronManager(reconcileSpec string, reactionReconcile *job.ReactionReconcileJob) *Manager {
	return &Manager{
		engine:            cron.New(cron.WithSeconds()),
		reconcileSpec:     reconcileSpec,
		reactionReconcile: reactionReconcile,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	// 上一轮未结束时跳过本轮
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(s.reactionReconcile)
	if _, err := s.engine.AddJob(s.reconcileSpec, wrapped); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

// InitCron 注册并启动全部定时任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
