package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyButtonsRows(t *testing.T) {
	markup := ReplyButtons([]string{"Одобрить", "Отклонить"})
	require.Len(t, markup.ReplyKeyboard, 1)
	require.Len(t, markup.ReplyKeyboard[0], 2)
	assert.Equal(t, "Одобрить", markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "Отклонить", markup.ReplyKeyboard[0][1].Text)
	assert.True(t, markup.ResizeKeyboard)
}

func TestWebAppButton(t *testing.T) {
	assert.Nil(t, WebAppButton("open", " "))

	markup := WebAppButton("open", "https://example.org/app")
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	btn := markup.InlineKeyboard[0][0]
	assert.Equal(t, "open", btn.Text)
	require.NotNil(t, btn.WebApp)
	assert.Equal(t, "https://example.org/app", btn.WebApp.URL)
}

func TestRemoveKeyboard(t *testing.T) {
	assert.True(t, RemoveKeyboard().RemoveKeyboard)
}
