// Package service holds the dialog core of the bot: the update dispatcher,
// the per-identity flow state machine and the menu keyboards. Collaborators
// are consumed through narrow interfaces defined here.
package service

import (
	"strings"

	"github.com/r1kuza/schoolbot/internal/bot/dedup"
	"github.com/r1kuza/schoolbot/internal/bot/extract"
	"github.com/r1kuza/schoolbot/internal/bot/models"
	"github.com/r1kuza/schoolbot/internal/bot/state"
)

// Transport sends outgoing messages and fetches uploaded files.
type Transport interface {
	SendText(chatID int64, text string, markup interface{}) error
	AnswerCallback(callbackID string) error
	FetchFile(fileID string) ([]byte, error)
}

// Storage is the persistence gateway for users, schedules and bells.
type Storage interface {
	GetUser(id int64) (*models.User, error)
	CreateUser(id int64, fullName, class string) (bool, error)
	DeleteUser(id int64) (bool, error)
	DeleteClass(class string) (int64, error)
	ListUsers() ([]models.User, error)
	ListDistinctClasses() ([]string, error)
	CountByClass() (map[string]int, error)
	GetSchedule(class, day string) ([]models.LessonRecord, error)
	ReplaceSchedule(class, day string, lessons []models.LessonRecord) error
	GetBellSlots() ([]models.BellSlot, error)
	UpdateBellSlot(number int, start, end string) (bool, error)
}

// Limiter throttles per-user request rates. A nil Limiter disables limiting.
type Limiter interface {
	Limited(userID int64) bool
}

// Extractor turns workbook bytes into lesson records for a shift.
type Extractor func(data []byte, shift string) (*extract.Result, error)

// BotService routes updates to the dialog flows and stateless handlers.
type BotService struct {
	transport Transport
	storage   Storage
	states    state.Store
	window    *dedup.Window
	limiter   Limiter
	extract   Extractor
	admins    map[string]struct{}
}

// New assembles the dialog core. admins is the static allow-list of
// operator handles.
func New(transport Transport, storage Storage, states state.Store, window *dedup.Window, limiter Limiter, extractor Extractor, admins []string) *BotService {
	allowed := make(map[string]struct{}, len(admins))
	for _, admin := range admins {
		admin = strings.ToLower(strings.TrimSpace(admin))
		if admin != "" {
			allowed[admin] = struct{}{}
		}
	}
	return &BotService{
		transport: transport,
		storage:   storage,
		states:    states,
		window:    window,
		limiter:   limiter,
		extract:   extractor,
		admins:    allowed,
	}
}

func (b *BotService) isAdmin(username string) bool {
	if username == "" {
		return false
	}
	_, ok := b.admins[strings.ToLower(username)]
	return ok
}
