package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest-be/internal/auth"
	"github.com/brickvest/brickvest-be/internal/middleware"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

type fakeUserStore struct {
	users map[int64]models.User
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return user, nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) ListUsers(ctx context.Context, role string, limit, offset int) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserStore) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return 0, nil
}

type fakePropertyStore struct {
	properties map[int64]models.Property
	lastFilter models.PropertyFilter
	nextID     int64
}

func (f *fakePropertyStore) CreateProperty(ctx context.Context, p models.Property) (models.Property, error) {
	f.nextID++
	p.ID = f.nextID
	f.properties[p.ID] = p
	return p, nil
}

func (f *fakePropertyStore) GetProperty(ctx context.Context, id int64) (models.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return models.Property{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakePropertyStore) UpdateProperty(ctx context.Context, p models.Property) (models.Property, error) {
	f.properties[p.ID] = p
	return p, nil
}

func (f *fakePropertyStore) DeleteProperty(ctx context.Context, id int64) error {
	if _, ok := f.properties[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.properties, id)
	return nil
}

func (f *fakePropertyStore) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, int64, error) {
	f.lastFilter = filter
	var out []models.Property
	for _, p := range f.properties {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePropertyStore) ListPropertiesBySeller(ctx context.Context, sellerID int64) ([]models.Property, error) {
	var out []models.Property
	for _, p := range f.properties {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePropertyStore) ListFeaturedProperties(ctx context.Context, limit int) ([]models.Property, error) {
	var out []models.Property
	for _, p := range f.properties {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePropertyStore) CountPropertiesByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, p := range f.properties {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

func newPropertyTestServer(t *testing.T) (*httptest.Server, *fakePropertyStore, *auth.TokenManager) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := &fakeUserStore{users: map[int64]models.User{
		1: {ID: 1, Email: "seller@example.com", Role: models.RoleSeller, IsActive: true},
		2: {ID: 2, Email: "investor@example.com", Role: models.RoleInvestor, IsActive: true},
		3: {ID: 3, Email: "banned@example.com", Role: models.RoleInvestor, IsActive: false},
	}}
	properties := &fakePropertyStore{properties: map[int64]models.Property{
		10: {ID: 10, Title: "Live Listing", SellerID: 1, Status: models.PropertyApproved, TotalTokens: 100, TokensAvailable: 100},
		11: {ID: 11, Title: "Under Review", SellerID: 1, Status: models.PropertyPending, TotalTokens: 100, TokensAvailable: 100},
	}, nextID: 100}

	tokens := auth.NewTokenManager("unit-test-secret", "brickvest-backend", time.Hour)
	authn := middleware.NewAuthenticator(tokens, users, logger)

	mux := http.NewServeMux()
	NewPropertyHandler(properties, logger).Register(mux, authn)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, properties, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenManager, user models.User) string {
	t.Helper()
	token, err := tokens.Generate(user)
	require.NoError(t, err)
	return token
}

// rawRequest sends a JSON body and returns only the status code, for cases
// where the response payload does not matter.
func rawRequest(t *testing.T, method, url string, payload any, token string) int {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func rawPost(t *testing.T, url string, payload any, token string) int {
	return rawRequest(t, http.MethodPost, url, payload, token)
}

func rawPut(t *testing.T, url string, payload any, token string) int {
	return rawRequest(t, http.MethodPut, url, payload, token)
}

func TestPublicCatalogOnlyShowsLiveListings(t *testing.T) {
	ts, store, _ := newPropertyTestServer(t)

	type listing struct {
		Properties []models.Property `json:"properties"`
		Total      int64             `json:"total"`
	}

	// A status filter asking for pending must be coerced to approved.
	result := getJSON[listing](t, ts.URL+"/api/properties?status=pending", "", http.StatusOK)
	assert.Equal(t, models.PropertyApproved, store.lastFilter.Status)
	require.Len(t, result.Properties, 1)
	assert.Equal(t, "Live Listing", result.Properties[0].Title)
}

func TestGetPropertyNotFound(t *testing.T) {
	ts, _, _ := newPropertyTestServer(t)

	resp, err := http.Get(ts.URL + "/api/properties/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePropertyRequiresSellerRole(t *testing.T) {
	ts, _, tokens := newPropertyTestServer(t)

	payload := map[string]any{
		"title":         "New Build",
		"property_type": models.PropertyResidential,
		"total_value":   200000,
		"total_tokens":  1000,
		"monthly_rent":  1500,
	}

	investorToken := bearerFor(t, tokens, models.User{ID: 2})
	resp := rawPost(t, ts.URL+"/api/properties", payload, investorToken)
	assert.Equal(t, http.StatusForbidden, resp)

	sellerToken := bearerFor(t, tokens, models.User{ID: 1})
	created := postJSON[models.Property](t, ts.URL+"/api/properties", payload, http.StatusCreated, sellerToken)
	assert.Equal(t, models.PropertyPending, created.Status)
	assert.Equal(t, int64(1000), created.TokensAvailable)
	assert.Equal(t, 200.0, created.TokenPrice)
	assert.Equal(t, int64(1), created.SellerID)
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	ts, _, tokens := newPropertyTestServer(t)

	bannedToken := bearerFor(t, tokens, models.User{ID: 3})
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/seller/properties", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bannedToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSellerCannotEditLiveListing(t *testing.T) {
	ts, _, tokens := newPropertyTestServer(t)
	sellerToken := bearerFor(t, tokens, models.User{ID: 1})

	resp := rawPut(t, ts.URL+"/api/properties/10", map[string]any{"title": "Renamed"}, sellerToken)
	assert.Equal(t, http.StatusConflict, resp)

	updated := rawPut(t, ts.URL+"/api/properties/11", map[string]any{"title": "Renamed"}, sellerToken)
	assert.Equal(t, http.StatusOK, updated)
}
