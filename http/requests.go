package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HeartRequest 心脏病预测请求
type HeartRequest struct {
	Age   *int     `json:"age" validate:"required"`
	Sex   *string  `json:"sex" validate:"required"`
	CP    *int     `json:"cp" validate:"required"`
	BP    *float64 `json:"bp" validate:"required"`
	Chol  *float64 `json:"chol" validate:"required"`
	MaxHR *float64 `json:"maxHR" validate:"required"`
}

// Features 按训练列顺序输出特征，"male" 不区分大小写记为 1
func (r HeartRequest) Features() []float64 {
	sex := 0.0
	if strings.EqualFold(*r.Sex, "male") {
		sex = 1
	}
	return []float64{float64(*r.Age), sex, float64(*r.CP), *r.BP, *r.Chol, *r.MaxHR}
}

// DiabetesRequest 糖尿病预测请求
type DiabetesRequest struct {
	Pregnancies   *float64 `json:"pregnancies" validate:"required"`
	Glucose       *float64 `json:"glucose" validate:"required"`
	BloodPressure *float64 `json:"blood_pressure" validate:"required"`
	Insulin       *float64 `json:"insulin" validate:"required"`
	Age           *float64 `json:"age" validate:"required"`
	BMI           *float64 `json:"bmi" validate:"required"`
}

func (r DiabetesRequest) Features() []float64 {
	return []float64{*r.Pregnancies, *r.Glucose, *r.BloodPressure, *r.Insulin, *r.Age, *r.BMI}
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// requestError 携带状态码和错误详情
type requestError struct {
	status int
	fields []FieldError
	detail string
}

func (e *requestError) Error() string {
	if e.detail != "" {
		return e.detail
	}
	if len(e.fields) > 0 {
		return e.fields[0].Msg
	}
	return http.StatusText(e.status)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest 解析并校验请求体，失败时返回 *requestError
func decodeRequest(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	// 请求体只能包含一个 JSON 值
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return decodeError(err)
		}
		return unprocessable(FieldError{Loc: []any{"body", dec.InputOffset()}, Msg: "JSON decode error", Type: "json_invalid"})
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Loc:  []any{"body", fe.Field()},
				Msg:  "Field required",
				Type: "missing",
			})
		}
		return &requestError{status: http.StatusUnprocessableEntity, fields: fields}
	}
	return nil
}

func decodeError(err error) error {
	var (
		maxBytes  *http.MaxBytesError
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &maxBytes):
		return &requestError{status: http.StatusRequestEntityTooLarge, detail: "Request body too large"}

	case errors.Is(err, io.EOF):
		return unprocessable(FieldError{Loc: []any{"body"}, Msg: "Field required", Type: "missing"})

	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return unprocessable(FieldError{Loc: []any{"body"}, Msg: "Input should be a valid dictionary", Type: "model_attributes_type"})
		}
		kind, msg := typeMismatch(typeErr.Type)
		return unprocessable(FieldError{Loc: []any{"body", typeErr.Field}, Msg: msg, Type: kind})

	case errors.As(err, &syntaxErr):
		return unprocessable(FieldError{Loc: []any{"body", syntaxErr.Offset}, Msg: "JSON decode error", Type: "json_invalid"})

	case errors.Is(err, io.ErrUnexpectedEOF):
		return unprocessable(FieldError{Loc: []any{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
	}
	return unprocessable(FieldError{Loc: []any{"body"}, Msg: err.Error(), Type: "value_error"})
}

func typeMismatch(t reflect.Type) (string, string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int_type", "Input should be a valid integer"
	case reflect.Float32, reflect.Float64:
		return "float_type", "Input should be a valid number"
	case reflect.String:
		return "string_type", "Input should be a valid string"
	}
	return "type_error", "Input has the wrong type"
}

func unprocessable(fields ...FieldError) *requestError {
	return &requestError{status: http.StatusUnprocessableEntity, fields: fields}
}
