// Package config provides configuration keys and defaults for the bot along
// with helpers to access structured configuration values
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	// TokenKey holds the slack bot authentication token, string value (required)
	TokenKey = "token"
	// DebugKey enables debug logging, bool value
	DebugKey = "debug"
	// StoragePathKey holds the directory the persistence backend writes to, string value
	StoragePathKey = "storagePath"
	// TimeLocationKey holds the time location of the action scheduler, string value
	TimeLocationKey = "timeLocation"
	// ThreadedRepliesKey makes all answers threaded replies, bool value
	ThreadedRepliesKey = "threadedReplies"
	// UserInfoCacheSizeKey holds the number of entries to keep in the user info
	// cache, int value. Defaults to no caching
	UserInfoCacheSizeKey = "userInfoCacheSize"
	// ReminderUTCOffsetKey holds the fixed UTC offset (in hours) of the time zone
	// used to decide whether a reminder falls on a weekend or outside office
	// hours, int value
	ReminderUTCOffsetKey = "reminderUTCOffset"
	// PluginsKey is the parent key of per-plugin configuration sections
	PluginsKey = "plugins"
)

// Default values
const (
	defaultStoragePath       = "~/.robocoop"
	defaultTimeLocation      = "Local"
	defaultReminderUTCOffset = 10
)

// NewViperWithDefaults creates a new viper instance with defaults set on it
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()

	return LayerConfigWithDefaults(v)
}

// LayerConfigWithDefaults layers the default values on an existing viper
// instance, leaving values already set untouched
func LayerConfigWithDefaults(v *viper.Viper) *viper.Viper {
	v.SetDefault(DebugKey, false)
	v.SetDefault(StoragePathKey, defaultStoragePath)
	v.SetDefault(TimeLocationKey, defaultTimeLocation)
	v.SetDefault(ThreadedRepliesKey, false)
	v.SetDefault(UserInfoCacheSizeKey, 0)
	v.SetDefault(ReminderUTCOffsetKey, defaultReminderUTCOffset)

	return v
}

// GetTimeLocation reads the TimeLocationKey value and loads the time location it names
func GetTimeLocation(v *viper.Viper) (timeLoc *time.Location, err error) {
	timeLocationValue := v.GetString(TimeLocationKey)

	timeLoc, err = time.LoadLocation(timeLocationValue)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load time location [%s]", timeLocationValue)
	}

	return timeLoc, nil
}

// GetReminderLocation builds the fixed offset time location reminders use to
// gate weekend and after-hours ticks
func GetReminderLocation(v *viper.Viper) *time.Location {
	offset := v.GetInt(ReminderUTCOffsetKey)

	return time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*60*60)
}

// GetPluginConfig returns the configuration section of the named plugin. A
// plugin without a section gets an empty configuration (defaults only)
func GetPluginConfig(v *viper.Viper, name string) (pluginConfig *viper.Viper) {
	pluginConfig = v.Sub(fmt.Sprintf("%s.%s", PluginsKey, name))

	if pluginConfig == nil {
		pluginConfig = viper.New()
	}

	return pluginConfig
}
