package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/service"
)

// tabRow is the Upcoming / Completed / All switcher shown under every
// schedule list.
func tabRow(active domain.Tab) []tgbotapi.InlineKeyboardButton {
	label := func(tab domain.Tab, text string) string {
		if tab == active {
			return "• " + text + " •"
		}
		return text
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label(domain.TabUpcoming, "Akan Datang"), "tab:upcoming"),
		tgbotapi.NewInlineKeyboardButtonData(label(domain.TabCompleted, "Selesai"), "tab:completed"),
		tgbotapi.NewInlineKeyboardButtonData(label(domain.TabAll, "Semua"), "tab:all"),
	)
}

func scheduleListKeyboard(schedules []*domain.Schedule, tab domain.Tab) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, sched := range schedules {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", sched.TypeEmoji(), truncate(sched.Title, 30)),
				fmt.Sprintf("sched:%d", sched.ID),
			),
		))
		if len(rows) >= 10 {
			break
		}
	}

	rows = append(rows, tabRow(tab))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// scheduleDetailKeyboard gates the join and cancel buttons on the
// activity day: once it has arrived, neither shows.
func scheduleDetailKeyboard(sched *domain.Schedule, joined bool, isAdmin bool, now time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if joined && domain.IsCancelable(sched, now) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚪 Batal ikut", fmt.Sprintf("cancel:%d", sched.ID)),
		))
	} else if !joined && domain.IsJoinable(sched, now) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✋ Ikut kegiatan", fmt.Sprintf("join:%d", sched.ID)),
		))
	}

	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Hapus", fmt.Sprintf("delsched:%d", sched.ID)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Kembali", "tab:upcoming"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmJoinKeyboard(scheduleID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Ya, daftarkan aku", fmt.Sprintf("joinok:%d", scheduleID)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Batal", fmt.Sprintf("sched:%d", scheduleID)),
		),
	)
}

func confirmCancelKeyboard(scheduleID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚪 Ya, batalkan", fmt.Sprintf("cancelok:%d", scheduleID)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Tidak jadi", fmt.Sprintf("sched:%d", scheduleID)),
		),
	)
}

func confirmDeleteKeyboard(verb string, id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Ya, hapus", fmt.Sprintf("%s:%d", verb, id)),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Batal", "noop"),
		),
	)
}

func myActivitiesKeyboard(activities []*service.Activity, now time.Time) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, a := range activities {
		if a.Fallback || !domain.IsCancelable(a.Schedule, now) {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🚪 Batal: "+truncate(a.Schedule.Title, 25),
				fmt.Sprintf("cancel:%d", a.Schedule.ID),
			),
		))
		if len(rows) >= 10 {
			break
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📅 Lihat jadwal", "tab:upcoming"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func equipmentListKeyboard(equipment []*domain.Equipment) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, e := range equipment {
		if e.AvailableCount() < 1 {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"📦 Pinjam "+truncate(e.Name, 25),
				fmt.Sprintf("borrow:%d", e.ID),
			),
		))
		if len(rows) >= 10 {
			break
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📦 Pinjamanku", "myborrows"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// borrowQtyKeyboard offers quantities up to the available stock.
func borrowQtyKeyboard(equipmentID int64, available int) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range []int{1, 2, 3, 5} {
		if n > available {
			break
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", n),
			fmt.Sprintf("borrowqty:%d:%d", equipmentID, n),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Batal", "noop"),
		),
	)
}

func borrowListKeyboard(borrows []*domain.Borrow) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, borrow := range borrows {
		if borrow.IsReturned() {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("↩️ Kembalikan #%d", borrow.ID),
				fmt.Sprintf("return:%d", borrow.ID),
			),
		))
		if len(rows) >= 10 {
			break
		}
	}

	if len(rows) == 0 {
		return nil
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
