package students

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/httpx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

var ErrStudentNotFound = errors.New("student not found")

type Student struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	City   string    `json:"city"`
}

// UnmarshalJSON accepts ids as UUID strings or as numeric ids.
func (s *Student) UnmarshalJSON(b []byte) error {
	type plain Student
	var raw struct {
		plain
		ID     flexID `json:"id"`
		UserID flexID `json:"userId"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Student(raw.plain)
	s.ID = uuid.UUID(raw.ID)
	s.UserID = uuid.UUID(raw.UserID)
	return nil
}

// NumericID carries a numeric student id as a UUID: the value sits in the
// low 8 bytes and the high 8 bytes are zero, which no v4 UUID has.
func NumericID(n int64) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[8:], uint64(n))
	return u
}

func numericOf(u uuid.UUID) (int64, bool) {
	if u == uuid.Nil {
		return 0, false
	}
	for _, b := range u[:8] {
		if b != 0 {
			return 0, false
		}
	}
	return int64(binary.BigEndian.Uint64(u[8:])), true
}

// pathID renders id the way the student service expects it.
func pathID(id uuid.UUID) string {
	if n, ok := numericOf(id); ok {
		return strconv.FormatInt(n, 10)
	}
	return id.String()
}

type flexID uuid.UUID

func (f *flexID) UnmarshalJSON(b []byte) error {
	v := strings.TrimSpace(string(b))
	if v == "null" {
		*f = flexID(uuid.Nil)
		return nil
	}
	if strings.HasPrefix(v, `"`) {
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if u, err := uuid.Parse(v); err == nil {
			*f = flexID(u)
			return nil
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("student id %q: not a uuid or positive number", v)
	}
	*f = flexID(NumericID(n))
	return nil
}

// Directory is the read side of the student service.
type Directory interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	ActiveStudentsByDomain(ctx context.Context, domain string) ([]uuid.UUID, error)
}

type client struct {
	http *httpx.JSONClient
}

func New(log *logger.Logger, baseURL string, timeout time.Duration, maxRetries int) (Directory, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("missing STUDENT_SERVICE_URL")
	}
	return &client{http: httpx.NewJSONClient(log, "student-service", baseURL, timeout, maxRetries)}, nil
}

func (c *client) GetStudent(ctx context.Context, id uuid.UUID) (*Student, error) {
	var out Student
	err := c.http.Do(ctx, http.MethodGet, "/api/students/"+url.PathEscape(pathID(id)), nil, &out)
	if httpx.StatusCode(err) == http.StatusNotFound {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		out.ID = id
	}
	return &out, nil
}

func (c *client) ActiveStudentsByDomain(ctx context.Context, domain string) ([]uuid.UUID, error) {
	var raw []flexID
	path := "/api/students/search/active-by-domain?domain=" + url.QueryEscape(domain)
	if err := c.http.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, id := range raw {
		out = append(out, uuid.UUID(id))
	}
	return out, nil
}
