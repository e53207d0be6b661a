package mocks

import (
	"github.com/stretchr/testify/mock"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) LoginURL(returnTo string) string {
	args := m.Called(returnTo)
	return args.String(0)
}
