// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plugin

import (
	"io"
	"log/slog"
	"sync"
)

var (
	pluginLogger      *slog.Logger
	pluginLoggerMutex sync.RWMutex
)

// SetLogger sets the logger handed to plugins created from the registry
func SetLogger(logger *slog.Logger) {
	pluginLoggerMutex.Lock()
	defer pluginLoggerMutex.Unlock()
	pluginLogger = logger
}

// Logger returns the logger for plugins created from the registry. A logger
// that throws away messages is returned if none has been set
func Logger() *slog.Logger {
	pluginLoggerMutex.RLock()
	defer pluginLoggerMutex.RUnlock()
	if pluginLogger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return pluginLogger
}
