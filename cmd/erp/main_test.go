package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/app"
	_ "github.com/MarselKurniawan/erp-system/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
	require.NotPanics(t, main)
}
