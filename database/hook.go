/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var silentQueries atomic.Bool

// SilenceQueryLog mutes QueryHook and SlowQueryHook output, e.g. while
// migrations run.
func SilenceQueryLog(silent bool) {
	silentQueries.Store(silent)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

var (
	otherOperationColor = color.New(color.FgRed)
	hookTagColor        = color.New(color.FgCyan)
	hookErrorColor      = color.New(color.BgRed, color.FgHiWhite)
)

func operationColor(event *bun.QueryEvent) *color.Color {
	if c, ok := operationColors[event.Operation()]; ok {
		return c
	}
	return otherOperationColor
}

// QueryHook prints executed statements colored by operation. Setting the
// environment variable named by envName overrides the static switches:
// "0" or empty disables, "1" logs failures only, "2" logs everything.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

type QueryHookOption func(*QueryHook)

func WithQueryHookEnv(name string) QueryHookOption {
	return func(h *QueryHook) { h.envName = name }
}

func WithQueryHookEnabled(enabled, verbose bool) QueryHookOption {
	return func(h *QueryHook) {
		h.enabled = enabled
		h.verbose = verbose
	}
}

func WithQueryHookWriter(w io.Writer) QueryHookOption {
	return func(h *QueryHook) { h.writer = w }
}

func NewQueryHook(opts ...QueryHookOption) *QueryHook {
	h := &QueryHook{writer: os.Stdout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if silentQueries.Load() {
		return
	}
	enabled, verbose := h.enabled, h.verbose
	if h.envName != "" {
		if env, ok := os.LookupEnv(h.envName); ok {
			enabled = env != "" && env != "0"
			verbose = env == "2"
		}
	}
	if !enabled {
		return
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	line := fmt.Sprintf("%s %s %12s  %s",
		now.Format("2006-01-02 15:04:05.000"),
		hookTagColor.Sprint("[BUN]"),
		now.Sub(event.StartTime).Round(time.Microsecond),
		operationColor(event).Sprint(event.Query),
	)
	if event.Err != nil {
		line += "\t" + hookErrorColor.Sprintf(" %s: %s ", reflect.TypeOf(event.Err), event.Err)
	}
	_, _ = fmt.Fprintln(h.writer, line)
}

// SlowQueryHook logs successful statements slower than threshold as
// warnings.
type SlowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(threshold time.Duration, logger Logger) *SlowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &SlowQueryHook{threshold: threshold, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil || silentQueries.Load() {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.threshold {
		return
	}
	h.logger.Warn("Slow query detected",
		"duration", duration.Round(time.Microsecond),
		"threshold", h.threshold,
		"operation", event.Operation(),
		"query", event.Query,
	)
}
