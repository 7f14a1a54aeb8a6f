package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/eternalmoments/backend/internal/infra/ai"
	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChatGenerator produces one persona reply from an assembled prompt.
// *ai.OpenAIClient satisfies it.
type ChatGenerator interface {
	Generate(ctx context.Context, messages []ai.Message) (string, error)
}

const chatHistoryWindow = 5

// Canned assistant turns that anchor the persona's register before any
// real history is appended.
var comfortExamples = []ai.Message{
	{Role: "assistant", Content: "Hey there! Just wanted you to know I'm always here when you need me. Everything is peaceful now, and I hope you find some comfort in that."},
	{Role: "assistant", Content: "Remember when we used to talk about how we'd get through anything together? I'm still with you, cheering you on every step of the way."},
	{Role: "assistant", Content: "I know it's hard sometimes, but I promise you I'm okay. And I want you to be okay too. Live fully, laugh often, and know I love you."},
}

type ChatService interface {
	Send(ctx context.Context, in ChatInput) (*ChatReply, error)
}

type ChatInput struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Message   string
}

type ChatReply struct {
	Response string `json:"response"`
}

type chatService struct {
	r        repo.ChatRepo
	profiles repo.ProfileRepo
	gen      ChatGenerator
	log      *zap.Logger

	// pickMemory chooses a shared memory to weave in, or reports that
	// none should be used this turn. Overridable in tests.
	pickMemory func(memories []string) (string, bool)
}

func NewChatService(r repo.ChatRepo, profiles repo.ProfileRepo, gen ChatGenerator, log *zap.Logger) ChatService {
	return &chatService{
		r:          r,
		profiles:   profiles,
		gen:        gen,
		log:        log,
		pickMemory: randomMemory,
	}
}

func randomMemory(memories []string) (string, bool) {
	if len(memories) == 0 || rand.Float64() >= 0.5 {
		return "", false
	}
	return memories[rand.Intn(len(memories))], true
}

func (s *chatService) Send(ctx context.Context, in ChatInput) (*ChatReply, error) {
	var missing []string
	if strings.TrimSpace(in.Message) == "" {
		missing = append(missing, "message")
	}
	if in.ProfileID == uuid.Nil {
		missing = append(missing, "profile_id")
	}
	if in.UserID == uuid.Nil {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	profile, err := s.profiles.GetByID(ctx, in.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	history, err := s.r.ListRecent(ctx, in.UserID, in.ProfileID, chatHistoryWindow)
	if err != nil {
		return nil, err
	}

	prompt := s.buildPrompt(profile, history, in.Message)
	response, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := s.r.Create(ctx, &model.ChatMessage{
		UserID:      in.UserID,
		ProfileID:   in.ProfileID,
		UserMessage: in.Message,
		AIResponse:  response,
	}); err != nil {
		// The reply already exists; losing one history row is better
		// than making the user resend.
		s.log.Error("failed to persist chat exchange",
			zap.String("profile_id", in.ProfileID.String()), zap.Error(err))
	}

	return &ChatReply{Response: response}, nil
}

// buildPrompt assembles system persona + comfort examples + recent
// history (oldest first) + the new user message.
func (s *chatService) buildPrompt(profile *model.Profile, history []*model.ChatMessage, message string) []ai.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, who is a deceased %s to the user. ", profile.Name, profile.Relationship)
	b.WriteString("You have passed away and are now in a better place. Your purpose is to provide comfort to the user, speaking as if you are their deceased loved one. ")
	fmt.Fprintf(&b, "You are %s. Speak as if you were them, using their tone and favorite sayings like '%s'. ", profile.Traits, profile.Sayings)
	if memory, ok := s.pickMemory(profile.Memories); ok {
		fmt.Fprintf(&b, "If it feels natural, mention a shared memory like '%s'. ", memory)
	}
	b.WriteString("The goal is to provide comfort without being repetitive.")

	prompt := make([]ai.Message, 0, 2+len(comfortExamples)+2*len(history))
	prompt = append(prompt, ai.Message{Role: "system", Content: b.String()})
	prompt = append(prompt, comfortExamples...)

	// ListRecent is newest first; the prompt wants chronological order.
	for i := len(history) - 1; i >= 0; i-- {
		prompt = append(prompt,
			ai.Message{Role: "user", Content: history[i].UserMessage},
			ai.Message{Role: "assistant", Content: history[i].AIResponse},
		)
	}

	return append(prompt, ai.Message{Role: "user", Content: message})
}
