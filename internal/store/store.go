package store

import (
	"encoding/json"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage keys. The session keys are cleared wholesale on logout.
const (
	KeyToken        = "token"
	KeyAppUser      = "appUser"
	KeyAppUserID    = "appUserId"
	KeyPreviousUser = "previousUser"
	KeyGithubToken  = "githubToken"
	KeyGitlabToken  = "gitlabToken"

	KeyNotifications = "notifications"
	KeyUnreadCount   = "unreadCount"
)

var sessionKeys = []string{KeyToken, KeyAppUser, KeyAppUserID, KeyGithubToken}

// Item is one persisted key/value pair. Values are JSON-serialized.
type Item struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// Store is the local persistent state of the client: session identity plus
// the cached notification feed. It stands in for the browser localStorage the
// backend contract assumes.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Item{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Set stores value under key, JSON-serialized.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Save(&Item{Key: key, Value: string(raw)}).Error
}

// Get loads key into out. Returns false when the key is absent or the stored
// value does not decode; callers treat both as "not set".
func (s *Store) Get(key string, out any) bool {
	var item Item
	err := s.db.First(&item, "key = ?", key).Error
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(item.Value), out) == nil
}

// GetString is Get for the common string case, empty when absent.
func (s *Store) GetString(key string) string {
	var v string
	s.Get(key, &v)
	return v
}

func (s *Store) Remove(key string) error {
	err := s.db.Delete(&Item{}, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// Clear drops every stored key.
func (s *Store) Clear() error {
	return s.db.Where("1 = 1").Delete(&Item{}).Error
}

// ClearSession removes the session identity keys, leaving the notification
// cache intact.
func (s *Store) ClearSession() error {
	return s.db.Delete(&Item{}, "key IN ?", sessionKeys).Error
}

// UserInfo is the stored identity of the current session.
type UserInfo struct {
	Name  string
	ID    int
	Token string
}

func (s *Store) UserInfo() UserInfo {
	var info UserInfo
	info.Name = s.GetString(KeyAppUser)
	info.Token = s.GetString(KeyToken)
	s.Get(KeyAppUserID, &info.ID)
	return info
}

// SaveSession persists a successful login.
func (s *Store) SaveSession(name string, id int, token string) error {
	if err := s.Set(KeyAppUser, name); err != nil {
		return err
	}
	if err := s.Set(KeyAppUserID, id); err != nil {
		return err
	}
	// previousUser survives logout so the login form can offer the last
	// identity again.
	if err := s.Set(KeyPreviousUser, name); err != nil {
		return err
	}
	return s.Set(KeyToken, token)
}
