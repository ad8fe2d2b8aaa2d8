package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/duesignal/duesignal/internal/app/api/server"
	"github.com/duesignal/duesignal/internal/app/service/reminder"
	"github.com/duesignal/duesignal/internal/app/service/statistics"
	"github.com/duesignal/duesignal/internal/app/service/subscription"
	"github.com/duesignal/duesignal/internal/platform/db"
	"github.com/duesignal/duesignal/internal/platform/mail"
	"github.com/duesignal/duesignal/internal/platform/scheduler"
	"github.com/duesignal/duesignal/pkg/config"
	"github.com/duesignal/duesignal/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	mail.Module,
	server.Module,
	subscription.Module,
	statistics.Module,
	reminder.Module,
	scheduler.Module,
)
