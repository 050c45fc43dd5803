package elements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/driver/drivertest"
	"github.com/testforge/uicore/internal/locator"
)

func TestElement_ReResolvesOnEveryCall(t *testing.T) {
	ctx := context.Background()
	page := drivertest.NewPage().Add(css("h1"), drivertest.NewNode("first"))
	fx := newFixture(t, page, nil)
	label := fx.factory.GetLabel(locator.CSS("h1"))

	text, err := label.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	page.Replace(css("h1"), drivertest.NewNode("second"))

	text, err = label.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestElement_ClickLogsLocalizedAction(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	node := drivertest.NewNode("Save")
	fx := newFixture(t, drivertest.NewPage().Add(css("#save"), node), zap.New(core))

	require.NoError(t, fx.factory.GetButton(locator.CSS("#save"), WithName("Save")).Click(context.Background()))
	assert.Equal(t, 1, node.Clicks())

	entries := logs.FilterMessage("Button 'Save' :: Clicking").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "button", entries[0].ContextMap()["element_kind"])
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.ElementActionsTotal.WithLabelValues("button", "click")))
}

func TestElement_UnnamedHandleLogsLocator(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fx := newFixture(t, drivertest.NewPage().Add(css("#go"), drivertest.NewNode("Go")), zap.New(core))

	require.NoError(t, fx.factory.GetButton(locator.CSS("#go")).Click(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Button 'css=#go' :: Clicking").Len())
}

func TestElement_RetriesStaleNode(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers within the retry budget", func(t *testing.T) {
		node := drivertest.NewNode("Save")
		d := newStaleDriver(drivertest.NewPage().Add(css("#save"), node), 2)
		fx := newFixture(t, d, nil)

		require.NoError(t, fx.factory.GetButton(locator.CSS("#save")).Click(ctx))
		assert.Equal(t, 1, node.Clicks())
		assert.Equal(t, 2.0, testutil.ToFloat64(fx.metrics.ActionRetriesTotal.WithLabelValues("button")))
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		node := drivertest.NewNode("Save")
		d := newStaleDriver(drivertest.NewPage().Add(css("#save"), node), 10)
		fx := newFixture(t, d, nil)

		err := fx.factory.GetButton(locator.CSS("#save")).Click(ctx)
		assert.True(t, errors.Is(err, driver.ErrStaleNode))
		assert.Equal(t, 0, node.Clicks())
	})
}

func TestElement_FailedReResolutionIsLookupTimeout(t *testing.T) {
	page := drivertest.NewPage().Add(css("#save"), drivertest.NewNode("Save"))
	fx := newFixture(t, page, nil)
	button := fx.factory.GetButton(locator.CSS("#save"))

	require.NoError(t, button.Click(context.Background()))
	page.Remove(css("#save"))

	err := button.Click(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrElementNotFound))
	assert.True(t, errors.Is(err, domain.ErrTimeout))
}

func TestElement_StaleLookupErrorIsNotRetried(t *testing.T) {
	page := drivertest.NewPage()
	page.FindErr = driver.ErrStaleNode
	fx := newFixture(t, page, nil)

	start := time.Now()
	err := fx.factory.GetButton(locator.CSS("#gone")).Click(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrElementNotFound))
	assert.True(t, errors.Is(err, driver.ErrStaleNode), "the last driver error stays in the chain")
	assert.Less(t, elapsed, 2*testTimeout, "one lookup timeout, not one per retry")
	assert.LessOrEqual(t, page.Queries(), int(testTimeout/(10*time.Millisecond))+4)
	assert.Zero(t, testutil.ToFloat64(fx.metrics.ActionRetriesTotal.WithLabelValues("button")))
}

func TestElement_CancelledContext(t *testing.T) {
	fx := newFixture(t, drivertest.NewPage(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fx.factory.GetButton(locator.CSS("#save")).Click(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestElement_AttributeAndFocus(t *testing.T) {
	ctx := context.Background()
	node := drivertest.NewNode("").WithAttr("data-id", "42")
	fx := newFixture(t, drivertest.NewPage().Add(css("div"), node), nil)
	el := fx.factory.GetLabel(locator.CSS("div"))

	v, err := el.Attribute(ctx, "data-id")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = el.Attribute(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, el.Focus(ctx))
	assert.True(t, node.Focused())
}

func TestTextBox(t *testing.T) {
	ctx := context.Background()
	node := drivertest.NewNode("").WithAttr("value", "old")
	fx := newFixture(t, drivertest.NewPage().Add(css("#name"), node), nil)
	box := fx.factory.GetTextBox(locator.CSS("#name"), WithName("Name"))

	require.NoError(t, box.Type(ctx, "er"))
	v, err := box.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "older", v)

	require.NoError(t, box.ClearAndType(ctx, "new"))
	v, err = box.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestCheckBox(t *testing.T) {
	ctx := context.Background()
	node := drivertest.NewNode("").WithAttr("type", "checkbox")
	fx := newFixture(t, drivertest.NewPage().Add(css("#agree"), node), nil)
	box := fx.factory.GetCheckBox(locator.CSS("#agree"))

	require.NoError(t, box.Check(ctx))
	require.NoError(t, box.Check(ctx))
	checked, err := box.IsChecked(ctx)
	require.NoError(t, err)
	assert.True(t, checked)
	assert.Equal(t, 1, node.Clicks(), "checking a checked box does not click")

	require.NoError(t, box.Uncheck(ctx))
	checked, err = box.IsChecked(ctx)
	require.NoError(t, err)
	assert.False(t, checked)

	require.NoError(t, box.Toggle(ctx))
	checked, err = box.IsChecked(ctx)
	require.NoError(t, err)
	assert.True(t, checked)
	assert.Equal(t, 3, node.Clicks())
}

func TestLink_Href(t *testing.T) {
	node := drivertest.NewNode("Home").WithAttr("href", "/")
	fx := newFixture(t, drivertest.NewPage().Add(css("a.home"), node), nil)

	href, err := fx.factory.GetLink(locator.CSS("a.home")).Href(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/", href)
}
