package apierr

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

// envelope 错误响应体
type envelope struct {
	Error   string      `json:"error"`
	Code    Kind        `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// HandlerFunc 返回 error 的处理函数
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle 将 HandlerFunc 适配为 http.HandlerFunc，统一写出错误
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Write(w, r, err)
		}
	}
}

// Write 写出错误信封；内部错误记录日志
func Write(w http.ResponseWriter, r *http.Request, err error) {
	e := From(err)
	if e.Kind == KindInternal {
		log.Printf("[api] %s %s: %v", r.Method, r.URL.Path, e.Err)
	}
	WriteJSON(w, e.Kind.Status(), envelope{Error: e.Message, Code: e.Kind, Details: e.Details})
}

// WriteJSON 将数据以 JSON 格式写入 HTTP 响应
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// DecodeJSON 解析请求体；格式错误返回 Validation
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return Validation("request body is required")
		}
		return Validation("invalid request body").WithDetails(err.Error())
	}
	return nil
}
