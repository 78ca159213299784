package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"log/slog"

	"github.com/kapu/youtube-tracker-bot-go/internal/adapter"
	apperrors "github.com/kapu/youtube-tracker-bot-go/pkg/errors"
)

// ErrUnknownCommand: 등록되지 않은 명령어를 호출했을 때 발생하는 오류
var ErrUnknownCommand = errors.New("unknown command")

// Registry: 봇의 모든 명령어 핸들러를 등록하고 관리하며, 이름 기반 조회 및 실행을 담당하는 레지스트리
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Command
	logger   *slog.Logger
}

// NewRegistry: 새로운 명령어 레지스트리 인스턴스를 생성합니다.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Command),
		logger:   logger,
	}
}

// Register: 새로운 명령어 핸들러를 레지스트리에 등록한다. (이름 정규화 적용)
func (r *Registry) Register(handlers ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		r.handlers[normalize(handler.Name())] = handler
	}
}

// Execute: 주어진 키(명령어 이름)에 해당하는 핸들러를 찾아 명령을 실행한다. (스레드 안전)
// 검증 에러는 사용자 노출 메시지로 변환하고, 그 외 에러는 일반 오류 문구로 감춘다.
func (r *Registry) Execute(ctx context.Context, cmdCtx *Context, name string, opts Options) (string, error) {
	handler := r.getHandler(name)
	if handler == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	reply, err := handler.Execute(ctx, cmdCtx, opts)
	if err != nil {
		var validation *apperrors.ValidationError
		if errors.As(err, &validation) {
			return adapter.ErrorMessage(validation.Message), nil
		}

		r.logger.Error("Command failed",
			slog.String("command", name),
			slog.String("guild", cmdCtx.GuildID),
			slog.Any("error", err))
		return adapter.ErrorMessage("처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."), nil
	}
	return reply, nil
}

// Count: 현재 등록된 명령어의 총 개수를 반환합니다.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Names: 등록된 명령어 이름 목록을 반환한다. (help 출력용)
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

func (r *Registry) getHandler(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		return nil
	}
	if handler, ok := r.handlers[normalize(name)]; ok {
		return handler
	}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
