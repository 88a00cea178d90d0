package telegram

import (
	tele "gopkg.in/telebot.v4"

	"waybill-bot/internal/flow"
)

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// markupFor converts a flow reply into telebot send options.
func markupFor(r flow.Reply) *tele.ReplyMarkup {
	if r.RemoveKeyboard {
		return RemoveKeyboard()
	}
	if len(r.Keyboard) == 0 {
		return nil
	}
	return ReplyButtons(r.Keyboard...)
}
