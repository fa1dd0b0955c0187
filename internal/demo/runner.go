package demo

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultMessage = "안녕하세요! Python에서 보낸 데이터입니다."

var ErrEmptyScript = errors.New("demo: empty script")

// Output is the payload of /run_python.
type Output struct {
	Message string   `json:"message"`
	Items   []string `json:"items"`
}

// Runner produces the demo output, either a fixed payload or the stdout
// lines of a configured command.
type Runner struct {
	script  string
	timeout time.Duration
}

func NewRunner(script string, timeout time.Duration) *Runner {
	return &Runner{script: strings.TrimSpace(script), timeout: timeout}
}

func (r *Runner) Run(ctx context.Context) (Output, error) {
	if r.script == "" {
		return Output{
			Message: defaultMessage,
			Items:   []string{"항목 1", "항목 2", "항목 3"},
		}, nil
	}

	fields := strings.Fields(r.script)
	if len(fields) == 0 {
		return Output{}, ErrEmptyScript
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("demo script %s: %w", fields[0], ctx.Err())
		}
		return Output{}, fmt.Errorf("demo script %s: %w: %s", fields[0], err, strings.TrimSpace(stderr.String()))
	}

	items := make([]string, 0)
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			items = append(items, line)
		}
	}
	return Output{Message: fmt.Sprintf("%s 실행 결과", fields[0]), Items: items}, scanner.Err()
}
