// Package logging wires go-logr through zapr, matching the ambient
// logging stack used across the pack (controller-runtime's own log
// package plumbs the same way). FromContext mirrors the accessor the
// teacher's controller calls at the top of every Reconcile.
package logging

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

// NewZapLogger builds the process-wide logr.Logger backed by zap,
// development-formatted when dev is true.
func NewZapLogger(dev bool) (logr.Logger, error) {
	var zl *zap.Logger
	var err error
	if dev {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zl), nil
}

// SetLog installs log as both controller-runtime's package logger and
// the context-carried default.
func SetLog(log logr.Logger) {
	logf.SetLogger(log)
}

// FromContext returns the logr.Logger carried on ctx, falling back to
// controller-runtime's package logger.
func FromContext(ctx context.Context) logr.Logger {
	return logf.FromContext(ctx)
}
