package robocoop

import (
	"fmt"

	"robocoop/config"

	lru "github.com/hashicorp/golang-lru"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
)

// UserInfoFinder defines the interface for finding a slack user's info
type UserInfoFinder interface {
	GetUserInfo(userID string) (user *slack.User, err error)
}

// cachingUserInfoFinder holds a cache and a loading UserInfoFinder to
// implement a UserInfoFinder loading entries from cache
type cachingUserInfoFinder struct {
	loader           UserInfoFinder
	logger           SLogger
	userProfileCache *lru.ARCCache
}

// NewCachingUserInfoFinder creates a new user info finder with caching
// enabled via config.UserInfoCacheSizeKey. It requires an implementation of
// the interface that does the actual loading when a user is not in cache
func NewCachingUserInfoFinder(v *viper.Viper, loader UserInfoFinder, logger SLogger) (uf UserInfoFinder, err error) {
	cuf := new(cachingUserInfoFinder)

	cs := v.GetInt(config.UserInfoCacheSizeKey)

	if cs > 0 {
		cuf.userProfileCache, err = lru.NewARC(cs)
		if err != nil {
			return nil, err
		}
	}

	cuf.loader = loader
	cuf.logger = logger

	return cuf, nil
}

// GetUserInfo gets the user info from cache or from the loader, keeping the
// loaded value for next time
func (c cachingUserInfoFinder) GetUserInfo(userID string) (u *slack.User, err error) {
	if c.userProfileCache == nil {
		c.logger.Debugf("Cache disabled, loading user info for [%s] from slack instead\n", userID)
		return c.loader.GetUserInfo(userID)
	}

	if userProfile, exists := c.userProfileCache.Get(userID); exists {
		c.logger.Debugf("User info in cache [%s] so using that\n", userID)

		up, ok := userProfile.(slack.User)
		if !ok {
			return nil, fmt.Errorf("Error converting cached value for user id [%s]", userID)
		}

		return &up, nil
	}

	c.logger.Debugf("User info for [%s] not found in cache, retrieving from slack and saving\n", userID)
	u, err = c.loader.GetUserInfo(userID)
	if err != nil {
		return nil, err
	}

	c.userProfileCache.Add(userID, *u)

	return u, nil
}
