// Package state provides per-user conversation state storage for Telegram bots.
// The stored value type is chosen by the bot; memory and Redis backends are
// available, plus a keyed lock table for serialising a user's updates.
package state
