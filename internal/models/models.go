package models

import (
	"time"
)

// storage keys of a browser profile
const (
	KeySession  = "user"
	KeyAccounts = "users"
	KeyStories  = "stories"
	KeyDrafts   = "drafts"
	KeyComments = "comments"
	KeyLikes    = "likes"
	KeyFollows  = "follows"
	KeyLanguage = "language"
)

const DefaultAvatar = "/placeholder.svg?height=40&width=40"

type UserAccount struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Avatar       string    `json:"avatar,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Session is a denormalized copy of the public account fields.
type Session struct {
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func NewSession(account *UserAccount) *Session {
	return &Session{
		UserID:       account.UserID,
		Name:         account.Name,
		Email:        account.Email,
		Avatar:       account.Avatar,
		RegisteredAt: account.RegisteredAt,
	}
}

type StoryRecord struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	CoverImage *string   `json:"coverImage"`
	AudioURL   *string   `json:"audioURL"`
	CreatedAt  time.Time `json:"createdAt"`
	IsDraft    bool      `json:"isDraft"`
}

// StoryFields is the editable part of a story or draft.
type StoryFields struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Category   string  `json:"category"`
	CoverImage *string `json:"coverImage"`
	AudioURL   *string `json:"audioURL"`
}

type Comment struct {
	CommentID  string    `json:"id"`
	StoryID    int64     `json:"storyId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Writer is the public view of a registered account.
type Writer struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	Stories      int       `json:"stories"`
	Followers    int       `json:"followers"`
	Following    int       `json:"following"`
	Categories   []string  `json:"categories"`
}

type StoryFilter struct {
	Category string
	Query    string
}

type StorageStats struct {
	Profiles int `json:"profiles" db:"profiles"`
	Items    int `json:"items" db:"items"`
}
