package kafka

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// saramaLogger routes sarama's internal log lines into zap at debug level.
type saramaLogger struct {
	l *zap.Logger
}

func (s saramaLogger) Print(v ...any) { s.l.Debug(strings.TrimSpace(fmt.Sprint(v...))) }

func (s saramaLogger) Printf(format string, v ...any) {
	s.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (s saramaLogger) Println(v ...any) { s.l.Debug(strings.TrimSpace(fmt.Sprintln(v...))) }
