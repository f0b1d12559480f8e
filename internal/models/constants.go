package models

const (
	// Статусы записей об автоматическом выполнении
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"

	ActionPause  = "pause"
	ActionEnable = "enable"

	DetailStatusSuccess = "success"
	DetailStatusFailed  = "failed"
	DetailStatusSkipped = "skipped"

	KeywordStatusEnabled = "enabled"
	KeywordStatusPaused  = "paused"

	ExecutionModeAuto   = "auto"
	ExecutionModeManual = "manual"

	ExecutionTypeScheduled = "scheduled"
	ExecutionTypeManual    = "manual"
)

const (
	ScheduleSyncAll         = "all"
	ScheduleSyncCampaigns   = "campaigns"
	ScheduleSyncKeywords    = "keywords"
	ScheduleSyncPerformance = "performance"
)

const (
	CheckStatusMatch    = "match"
	CheckStatusMismatch = "mismatch"
	CheckStatusError    = "error"
)

const (
	// DefaultLookbackDays окно анализа производительности ключевых слов
	DefaultLookbackDays = 30

	// MaxStatusErrors размер кольца последних ошибок планировщика
	MaxStatusErrors = 50

	// DefaultSchedulerTick период основного цикла планировщика в секундах
	DefaultSchedulerTick = 60

	// DefaultMaxConcurrentAccounts одновременных синхронизаций аккаунтов
	DefaultMaxConcurrentAccounts = 4
)
