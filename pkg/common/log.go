/*
Copyright 2025 Mirantis IT.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package whalecommon

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const LoggerResourceField = "resource"

func InitLogger(resourceField bool) zerolog.Logger {
	return InitLoggerWithOutput(os.Stdout, resourceField)
}

func InitLoggerWithOutput(out io.Writer, resourceField bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.StampMicro
	output := zerolog.ConsoleWriter{Out: out, NoColor: true}
	if resourceField {
		output.PartsOrder = []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			LoggerResourceField,
			zerolog.MessageFieldName,
		}
		output.FieldsExclude = []string{LoggerResourceField}
	}
	output.TimeLocation = time.Local
	output.FormatTimestamp = func(i interface{}) string {
		return fmt.Sprintf("%-6s |", i)
	}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("%-4s |", i))
	}
	output.FormatCaller = func(i interface{}) string {
		if v, ok := i.(string); ok {
			return fmt.Sprintf("%-6s |", filepath.Base(v))
		}
		return ""
	}
	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

// ParseLogLevel falls back to info for empty or unknown values.
func ParseLogLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// ResourceLogger returns a child logger tagged with the resource kind and id.
func ResourceLogger(log zerolog.Logger, kind, id string) zerolog.Logger {
	return log.With().Str(LoggerResourceField, fmt.Sprintf("%s/%s", kind, id)).Logger()
}
