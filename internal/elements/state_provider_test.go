package elements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/driver/drivertest"
	"github.com/testforge/uicore/internal/locator"
	"github.com/testforge/uicore/internal/resilience"
)

func TestStateProvider_InstantChecks(t *testing.T) {
	ctx := context.Background()
	disabled := drivertest.NewNode("")
	disabled.SetEnabled(false)
	page := drivertest.NewPage().
		Add(css("#visible"), drivertest.NewNode("")).
		Add(css("#hidden"), drivertest.Hidden("")).
		Add(css("#disabled"), disabled)
	fx := newFixture(t, page, nil)

	visible := fx.factory.GetButton(locator.CSS("#visible")).State()
	assert.True(t, visible.IsDisplayed(ctx))
	assert.True(t, visible.IsExist(ctx))
	assert.True(t, visible.IsClickable(ctx))

	hidden := fx.factory.GetButton(locator.CSS("#hidden")).State()
	assert.False(t, hidden.IsDisplayed(ctx))
	assert.True(t, hidden.IsExist(ctx))
	assert.False(t, hidden.IsClickable(ctx))

	off := fx.factory.GetButton(locator.CSS("#disabled")).State()
	enabled, err := off.IsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, off.IsClickable(ctx))

	missing := fx.factory.GetButton(locator.CSS("#missing")).State()
	start := time.Now()
	assert.False(t, missing.IsExist(ctx))
	_, err = missing.IsEnabled(ctx)
	assert.True(t, errors.Is(err, domain.ErrElementNotFound))
	assert.Less(t, time.Since(start), testTimeout, "instant checks do not wait")
}

func TestStateProvider_Waits(t *testing.T) {
	ctx := context.Background()
	node := drivertest.Hidden("")
	page := drivertest.NewPage().Add(css("#panel"), node)
	fx := newFixture(t, page, nil)
	state := fx.factory.GetLabel(locator.CSS("#panel")).State()

	go func() {
		time.Sleep(30 * time.Millisecond)
		node.SetDisplayed(true)
	}()
	assert.True(t, state.WaitForDisplayed(ctx))
	assert.False(t, state.WaitForNotDisplayed(ctx, resilience.WithTimeout(30*time.Millisecond)))

	assert.True(t, state.WaitForExist(ctx))
	go func() {
		time.Sleep(30 * time.Millisecond)
		page.Remove(css("#panel"))
	}()
	assert.True(t, state.WaitForNotExist(ctx))
	assert.True(t, state.WaitForNotDisplayed(ctx))
	assert.False(t, state.WaitForEnabled(ctx, resilience.WithTimeout(20*time.Millisecond)))
	assert.False(t, state.WaitForNotEnabled(ctx, resilience.WithTimeout(20*time.Millisecond)))
}

func TestStateProvider_WaitForEnabled(t *testing.T) {
	ctx := context.Background()
	node := drivertest.NewNode("")
	node.SetEnabled(false)
	fx := newFixture(t, drivertest.NewPage().Add(css("#submit"), node), nil)
	state := fx.factory.GetButton(locator.CSS("#submit")).State()

	assert.True(t, state.WaitForNotEnabled(ctx))
	go func() {
		time.Sleep(30 * time.Millisecond)
		node.SetEnabled(true)
	}()
	assert.True(t, state.WaitForEnabled(ctx))
}

func TestStateProvider_WaitForClickable(t *testing.T) {
	ctx := context.Background()
	node := drivertest.NewNode("")
	node.SetEnabled(false)
	fx := newFixture(t, drivertest.NewPage().Add(css("#submit"), node), nil)
	state := fx.factory.GetButton(locator.CSS("#submit")).State()

	err := state.WaitForClickable(ctx, resilience.WithTimeout(30*time.Millisecond))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrElementNotFound))
	assert.True(t, errors.Is(err, domain.ErrTimeout))

	go func() {
		time.Sleep(30 * time.Millisecond)
		node.SetEnabled(true)
	}()
	assert.NoError(t, state.WaitForClickable(ctx))
}
