package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedSpec(t *testing.T) {
	swagger, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, swagger.Validate(context.Background()))

	payment := swagger.Paths.Find("/workflow/payment")
	require.NotNil(t, payment)
	require.NotNil(t, payment.Post)
	require.Equal(t, "SubmitPayment", payment.Post.OperationID)

	logout := swagger.Paths.Find("/auth/logout")
	require.NotNil(t, logout)
	require.NotNil(t, logout.Post.Security)
}
