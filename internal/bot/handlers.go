package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/service"
)

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.cfg.IsAllowedUser(msg.From.ID) {
		b.SendMessage(chatID, "⛔ Bot ini khusus anggota UKM Catur")
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	b.SendMessage(chatID, "Aku hanya mengerti perintah. /help untuk daftar perintah")
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	msgID := callback.Message.MessageID
	now := time.Now().In(b.cfg.Timezone)

	if !b.cfg.IsAllowedUser(callback.From.ID) {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "⛔ Akses ditolak"))
		return
	}

	data := callback.Data
	parts := strings.Split(data, ":")
	ack := ""

	switch parts[0] {
	case "noop":
		b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))

	case "tab":
		if len(parts) == 2 {
			b.showScheduleTab(chatID, msgID, domain.Tab(parts[1]), now)
		}

	case "sched":
		if id, ok := callbackID(parts, 1); ok {
			b.showScheduleDetail(chatID, msgID, id, now)
		}

	case "join":
		if id, ok := callbackID(parts, 1); ok {
			b.confirmJoin(chatID, msgID, id, now)
		}

	case "joinok":
		if id, ok := callbackID(parts, 1); ok {
			ack = b.doJoin(chatID, msgID, id, now)
		}

	case "cancel":
		if id, ok := callbackID(parts, 1); ok {
			b.confirmCancel(chatID, msgID, id, now)
		}

	case "cancelok":
		if id, ok := callbackID(parts, 1); ok {
			ack = b.doCancel(chatID, msgID, id, now)
		}

	case "delschedok":
		if id, ok := callbackID(parts, 1); ok {
			ack = b.doDeleteSchedule(chatID, msgID, id, now)
		}

	case "delsched":
		if id, ok := callbackID(parts, 1); ok {
			b.editMessage(chatID, msgID, fmt.Sprintf("Hapus kegiatan #%d?", id), markupPtr(confirmDeleteKeyboard("delschedok", id)))
		}

	case "delalatok":
		if id, ok := callbackID(parts, 1); ok {
			ack = b.doDeleteEquipment(chatID, msgID, id, now)
		}

	case "borrow":
		if id, ok := callbackID(parts, 1); ok {
			b.askBorrowQty(chatID, msgID, id)
		}

	case "borrowqty":
		if len(parts) == 3 {
			id, ok1 := callbackID(parts, 1)
			qty, err := strconv.Atoi(parts[2])
			if ok1 && err == nil {
				ack = b.doBorrow(chatID, msgID, id, qty, now)
			}
		}

	case "return":
		if id, ok := callbackID(parts, 1); ok {
			ack = b.doReturn(chatID, msgID, id, now)
		}

	case "myborrows":
		b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))
		b.cmdMyBorrows(chatID, now)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, ack)); err != nil {
		log.Printf("Answer callback: %v", err)
	}
}

func callbackID(parts []string, idx int) (int64, bool) {
	if len(parts) <= idx {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[idx], 10, 64)
	return id, err == nil
}

func markupPtr(kb tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &kb
}

func (b *Bot) showScheduleTab(chatID int64, msgID int, tab domain.Tab, now time.Time) {
	schedules, err := b.scheduleService.List(tab, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return
	}

	text := scheduleHeader(tab) + "\n\n" + b.scheduleService.FormatList(schedules, tab, now)
	b.editMessage(chatID, msgID, text, markupPtr(scheduleListKeyboard(schedules, tab)))
}

func (b *Bot) showScheduleDetail(chatID int64, msgID int, scheduleID int64, now time.Time) {
	sched, err := b.scheduleService.Get(scheduleID)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return
	}

	// A session is optional here: the listing is public, only the join
	// and cancel buttons need one.
	var joined, isAdmin bool
	var quota *service.Quota
	if sess, err := b.authService.Session(chatID, now); err == nil {
		isAdmin = sess.IsAdmin()
		if q, err := b.scheduleService.Quota(sess.Token, sched); err == nil {
			quota = q
		}
		if participations, err := b.scheduleService.Participations(sess, scheduleID); err == nil {
			for _, p := range participations {
				if p.IsRegistered() && p.UserID == sess.UserID {
					joined = true
					break
				}
			}
		}
	}

	text := b.scheduleService.FormatDetail(sched, quota, now)
	if joined {
		text += "\n\n✅ Kamu terdaftar di kegiatan ini"
	}
	b.editMessage(chatID, msgID, text, markupPtr(scheduleDetailKeyboard(sched, joined, isAdmin, now)))
}

func (b *Bot) confirmJoin(chatID int64, msgID int, scheduleID int64, now time.Time) {
	if _, err := b.authService.Session(chatID, now); err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return
	}

	sched, err := b.scheduleService.Get(scheduleID)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return
	}

	text := fmt.Sprintf("Ikut <b>%s</b>?\n📅 %s", sched.Title, sched.DateTime)
	b.editMessage(chatID, msgID, text, markupPtr(confirmJoinKeyboard(scheduleID)))
}

func (b *Bot) doJoin(chatID int64, msgID int, scheduleID int64, now time.Time) string {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	if _, err := b.scheduleService.Join(sess, scheduleID, now); err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	b.editMessage(chatID, msgID, "✅ Berhasil terdaftar! Sampai jumpa di kegiatan ♟", nil)
	return "Terdaftar!"
}

func (b *Bot) confirmCancel(chatID int64, msgID int, scheduleID int64, now time.Time) {
	sched, err := b.scheduleService.Get(scheduleID)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return
	}

	text := fmt.Sprintf("Batal ikut <b>%s</b>?\n📅 %s", sched.Title, sched.DateTime)
	b.editMessage(chatID, msgID, text, markupPtr(confirmCancelKeyboard(scheduleID)))
}

func (b *Bot) doCancel(chatID int64, msgID int, scheduleID int64, now time.Time) string {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	if err := b.scheduleService.Cancel(sess, scheduleID, now); err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	b.editMessage(chatID, msgID, "✅ Pendaftaran dibatalkan", nil)
	return "Dibatalkan"
}

func (b *Bot) doDeleteSchedule(chatID int64, msgID int, scheduleID int64, now time.Time) string {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	if err := b.scheduleService.Delete(sess, scheduleID); err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	b.editMessage(chatID, msgID, fmt.Sprintf("🗑 Kegiatan #%d dihapus", scheduleID), nil)
	return "Dihapus"
}

func (b *Bot) doDeleteEquipment(chatID int64, msgID int, equipmentID int64, now time.Time) string {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	if err := b.equipmentService.Delete(sess, equipmentID); err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	b.editMessage(chatID, msgID, fmt.Sprintf("🗑 Alat #%d dihapus", equipmentID), nil)
	return "Dihapus"
}

func (b *Bot) askBorrowQty(chatID int64, msgID int, equipmentID int64) {
	e, err := b.equipmentService.Get(equipmentID)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return
	}
	if e.AvailableCount() < 1 {
		b.editMessage(chatID, msgID, "❌ Stok <b>"+e.Name+"</b> sedang habis", nil)
		return
	}

	text := fmt.Sprintf("Pinjam <b>%s</b>, berapa banyak?\nTersedia: %d", e.Name, e.AvailableCount())
	b.editMessage(chatID, msgID, text, markupPtr(borrowQtyKeyboard(equipmentID, e.AvailableCount())))
}

func (b *Bot) doBorrow(chatID int64, msgID int, equipmentID int64, qty int, now time.Time) string {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	borrow, err := b.equipmentService.Borrow(sess, equipmentID, qty, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	b.editMessage(chatID, msgID, fmt.Sprintf("✅ Peminjaman #%d tercatat (%d unit).\nJaga baik-baik ya!", borrow.ID, borrow.Quantity), nil)
	return "Tercatat"
}

func (b *Bot) doReturn(chatID int64, msgID int, borrowID int64, now time.Time) string {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	returned, err := b.equipmentService.Return(sess, borrowID)
	if err != nil {
		b.editMessage(chatID, msgID, "❌ "+err.Error(), nil)
		return ""
	}

	b.editMessage(chatID, msgID, fmt.Sprintf("✅ Peminjaman #%d dikembalikan. Terima kasih!", returned.ID), nil)
	return "Dikembalikan"
}
