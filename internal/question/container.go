package question

import (
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
)

type QuestionContainer struct {
	Handler *Handler
	Service QuestionService
}

func NewQuestionContainer(bank *Bank, policy access.Policy) *QuestionContainer {
	service := NewService(bank, policy, nil)
	handler := NewHandler(service)

	return &QuestionContainer{
		Handler: handler,
		Service: service,
	}
}
