// Package errors: 트래커 봇 서비스 전체에서 사용되는 에러 타입들을 정의한다.
package errors

import "fmt"

// APIError: 외부 API 호출 중 발생한 에러 (YouTube Data API, Discord REST 등)
type APIError struct {
	Operation  string // 수행 중이던 API 작업
	StatusCode int    // HTTP 상태 코드 (0이면 네트워크 오류)
	Err        error  // 원인 에러
}

func (e APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("api error operation=%s status=%d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("api error operation=%s status=%d: %v", e.Operation, e.StatusCode, e.Err)
}

func (e APIError) Unwrap() error { return e.Err }

// NewAPIError: API 에러를 생성한다.
func NewAPIError(operation string, statusCode int, cause error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// StoreError: 영속 저장소 작업이 재시도 후에도 실패했을 때 발생하는 에러
type StoreError struct {
	Operation string // upsert, delete, query 등
	Key       string // (guild, video) 복합 키 등
	Err       error  // 원인 에러
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store error operation=%s key=%s", e.Operation, e.Key)
	}
	return fmt.Sprintf("store error operation=%s key=%s: %v", e.Operation, e.Key, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

// NewStoreError: 저장소 에러를 생성한다.
func NewStoreError(operation, key string, cause error) *StoreError {
	return &StoreError{
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// DeliveryError: 알림 메시지 전송 실패 에러.
// 스케줄러는 이 에러를 로깅만 하고 배치 처리를 계속한다.
type DeliveryError struct {
	ChannelID string
	Err       error
}

func (e DeliveryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("delivery error channel=%s", e.ChannelID)
	}
	return fmt.Sprintf("delivery error channel=%s: %v", e.ChannelID, e.Err)
}

func (e DeliveryError) Unwrap() error { return e.Err }

// NewDeliveryError: 전송 에러를 생성한다.
func NewDeliveryError(channelID string, cause error) *DeliveryError {
	return &DeliveryError{
		ChannelID: channelID,
		Err:       cause,
	}
}

// CacheError: 캐시 작업 중 발생한 에러
type CacheError struct {
	Operation string // get, set, delete 등
	Key       string // 캐시 키
	Err       error  // 원인 에러
}

func (e CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache error operation=%s key=%s", e.Operation, e.Key)
	}
	return fmt.Sprintf("cache error operation=%s key=%s: %v", e.Operation, e.Key, e.Err)
}

func (e CacheError) Unwrap() error { return e.Err }

// NewCacheError: 캐시 에러를 생성한다.
func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// ValidationError: 명령어 입력 검증 실패 에러.
// 스케줄러에 도달하기 전에 명령어 경계에서 동기적으로 반환된다.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error field=%s: %s", e.Field, e.Message)
}

// NewValidationError: 검증 에러를 생성한다.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
