package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/myshagun/backend/internal/models"
	"github.com/myshagun/backend/internal/utils"
	"gorm.io/gorm"
)

// DefaultPassword is the plain password every fixture user is created with.
const DefaultPassword = "Test123456"

// NewTestUser builds an unsaved user with a hashed DefaultPassword and a matching profile.
func NewTestUser(firstName string, gender models.Gender) (*models.User, *models.Profile, error) {
	hashedPassword, err := utils.HashPassword(DefaultPassword)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.NewString()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("%s.%s@example.com", firstName, id[:8]),
		PasswordHash: hashedPassword,
	}
	profile := &models.Profile{
		UserID:      id,
		FirstName:   firstName,
		LastName:    "Test",
		DateOfBirth: time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC),
		Gender:      gender,
		City:        "Pune",
	}
	return user, profile, nil
}

// CreateTestUserWithProfile saves a user and profile and returns the profile.
func CreateTestUserWithProfile(t *testing.T, db *gorm.DB, firstName string, gender models.Gender) *models.Profile {
	user, profile, err := NewTestUser(firstName, gender)
	if err != nil {
		t.Fatalf("Failed to build test user: %v", err)
	}
	if err := db.Omit("Profile").Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestLike records fromID liking toID.
func CreateTestLike(t *testing.T, db *gorm.DB, fromID, toID string) *models.Like {
	like := &models.Like{FromProfileID: fromID, ToProfileID: toID}
	if err := db.Omit("From", "To").Create(like).Error; err != nil {
		t.Fatalf("Failed to create test like: %v", err)
	}
	return like
}

// CreateTestConversation stores a conversation for the pair in canonical order.
func CreateTestConversation(t *testing.T, db *gorm.DB, a, b string) *models.Conversation {
	user1, user2 := models.CanonicalPair(a, b)
	conversation := &models.Conversation{User1ID: user1, User2ID: user2}
	if err := db.Create(conversation).Error; err != nil {
		t.Fatalf("Failed to create test conversation: %v", err)
	}
	return conversation
}

// CreateTestMessage stores a message at the given time without touching the conversation.
func CreateTestMessage(t *testing.T, db *gorm.DB, conversationID, senderID, receiverID, text string, at time.Time) *models.Message {
	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Message:        text,
		CreatedAt:      at,
	}
	if err := db.Omit("Conversation").Create(message).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}
	return message
}
