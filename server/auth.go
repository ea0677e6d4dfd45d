package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"recipe-service/auth"
	"recipe-service/routing"
	"recipe-service/store"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const tokenCachePrefix = "auth_token:"

// tokenAuth resolves "Authorization: Token <key>" to a user, remembering
// hits in the cache for ttl
type tokenAuth struct {
	store *store.Store
	cache cache.Cache // optional
	ttl   time.Duration
}

func newTokenAuth(s *store.Store, c cache.Cache, ttl time.Duration) *tokenAuth {
	return &tokenAuth{store: s, cache: c, ttl: ttl}
}

// checkAuth implements routing.Authenticator
func (a *tokenAuth) checkAuth(r *http.Request) (bool, httpserver.RequestAuth) {
	key, ok := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if !ok {
		return false, httpserver.RequestAuth{}
	}

	userID, ok := a.cachedUserID(key)
	if !ok {
		var err error
		userID, err = a.store.UserIDByToken(r.Context(), key)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Error("Token lookup failed", zap.Error(err))
			}
			return false, httpserver.RequestAuth{}
		}
		if a.cache != nil {
			a.cache.Set(tokenCachePrefix+key, strconv.Itoa(userID), a.ttl)
		}
	}

	return true, httpserver.RequestAuth{
		Type:   routing.AuthToken,
		Client: "user:" + strconv.Itoa(userID),
		Claims: map[string]interface{}{routing.ClaimUserID: userID},
	}
}

// cachedUserID reads the cache; redis hands values back as strings or bytes
func (a *tokenAuth) cachedUserID(key string) (int, bool) {
	if a.cache == nil {
		return 0, false
	}
	cached, err := a.cache.Get(tokenCachePrefix + key)
	if err != nil || cached == nil {
		return 0, false
	}

	var raw string
	switch v := cached.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case int:
		return v, v > 0
	default:
		return 0, false
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
