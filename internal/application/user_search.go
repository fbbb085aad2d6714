package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/pmihaylov/user-management-api/internal/domain/entity"
)

// userDoc is the Elasticsearch projection of a user. Only the fields that are
// serialized to callers are indexed; the password hash never leaves Postgres.
type userDoc struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	DateOfBirth entity.Date `json:"date_of_birth"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (s *UserService) esEnabled() bool {
	return s.ES != nil && s.ESUsersIndex != ""
}

// indexUser mirrors the user into the search index. Best-effort: failures are
// logged, never surfaced, and the next write re-indexes the document.
func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if !s.esEnabled() {
		return
	}
	doc := userDoc{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *UserService) deleteUserDoc(ctx context.Context, id string) {
	if !s.esEnabled() {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// searchUsers serves the searched List path. When the index is configured the
// fuzzy match is delegated to Elasticsearch (result order is whatever the
// store returns); otherwise it falls back to an ILIKE scan in Postgres.
func (s *UserService) searchUsers(ctx context.Context, term string) ([]entity.User, error) {
	if !s.esEnabled() {
		return s.Repo.SearchByName(ctx, term)
	}

	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     term,
				"fields":    []string{"first_name", "last_name^2"},
				"fuzziness": "AUTO",
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		s.Logger.WithError(err).Warn("es search failed, falling back to store scan")
		return s.Repo.SearchByName(ctx, term)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).Warn("es search response error, falling back to store scan")
		return s.Repo.SearchByName(ctx, term)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	users := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		users = append(users, entity.User{
			ID:          d.ID,
			FirstName:   d.FirstName,
			LastName:    d.LastName,
			DateOfBirth: d.DateOfBirth,
			PhoneNumber: d.PhoneNumber,
			Email:       d.Email,
			CreatedAt:   d.CreatedAt,
		})
	}
	return users, nil
}
