// Package market implements the marketplace conversation: seller onboarding,
// lot creation and admin moderation driven by a per-user phase machine, plus
// the one-shot commands and the mini-app protocol around it.
package market
