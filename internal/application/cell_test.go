package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/gitlab-bulk-tools/internal/application"
)

func TestCell_SetNotifiesSubscribers(t *testing.T) {
	c := application.NewCell(1)

	var got []int
	unsubscribe := c.Subscribe(func(v int) { got = append(got, v) })

	c.Set(2)
	c.Set(3)
	unsubscribe()
	c.Set(4)

	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 4, c.Get())
}

func TestCell_SubscriberMayReadCell(t *testing.T) {
	c := application.NewCell("a")

	var seen string
	c.Subscribe(func(string) { seen = c.Get() })
	c.Set("b")

	assert.Equal(t, "b", seen)
}

func TestCell_SubscribersRunInRegistrationOrder(t *testing.T) {
	c := application.NewCell(0)

	var order []string
	c.Subscribe(func(int) { order = append(order, "first") })
	unsubscribe := c.Subscribe(func(int) { order = append(order, "second") })
	c.Subscribe(func(int) { order = append(order, "third") })

	c.Set(1)
	unsubscribe()
	c.Set(2)

	assert.Equal(t, []string{"first", "second", "third", "first", "third"}, order)
}
