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

package utils

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureOutputRedirectsRegisteredLoggers(t *testing.T) {
	t.Cleanup(func() { ConfigureOutput(os.Stdout) })

	var before, after bytes.Buffer
	ConfigureOutput(&before)
	existing := NewLogger("existing")
	existing.SetLevel(logrus.InfoLevel)
	existing.Info("first")
	assert.Contains(t, before.String(), "first")

	ConfigureOutput(&after)
	existing.Info("second")
	created := NewLogger("created")
	created.SetLevel(logrus.InfoLevel)
	created.Info("third")
	assert.NotContains(t, before.String(), "second")
	assert.Contains(t, after.String(), "second")
	assert.Contains(t, after.String(), "third")
}

func TestRegisterLoggerAndSetLevel(t *testing.T) {
	l := logrus.New()
	RegisterLogger("payments", l)
	require.True(t, SetLoggerLevel("payments", "error"))
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("absent", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" WARNING "))
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("loud"))
}
