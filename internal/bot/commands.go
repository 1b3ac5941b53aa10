package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ukmcatur/caturbot/internal/domain"
	"github.com/ukmcatur/caturbot/internal/service"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	now := time.Now().In(b.cfg.Timezone)

	switch cmd {
	case "start":
		b.cmdStart(chatID)
	case "help":
		b.cmdHelp(chatID)
	case "login":
		b.cmdLogin(chatID, msg.MessageID, args)
	case "daftar":
		b.cmdRegister(chatID, args)
	case "logout":
		b.cmdLogout(chatID)
	case "jadwal":
		b.cmdSchedules(chatID, args, now)
	case "kegiatanku":
		b.cmdMyActivities(chatID, now)
	case "alat":
		b.cmdEquipment(chatID)
	case "pinjaman":
		b.cmdMyBorrows(chatID, now)
	case "profil":
		b.cmdProfile(chatID, now)
	case "ubahprofil":
		b.cmdUpdateProfile(chatID, args, now)
	case "gantipassword":
		b.cmdChangePassword(chatID, msg.MessageID, args, now)
	case "hapusakun":
		b.cmdDeleteAccount(chatID, args, now)
	case "export":
		b.cmdExport(chatID, now)
	case "tambahjadwal":
		b.cmdAddSchedule(chatID, args, now)
	case "ubahjadwal":
		b.cmdEditSchedule(chatID, args, now)
	case "hapusjadwal":
		b.cmdDeleteSchedule(chatID, args, now)
	case "tambahalat":
		b.cmdAddEquipment(chatID, args, now)
	case "ubahalat":
		b.cmdEditEquipment(chatID, args, now)
	case "hapusalat":
		b.cmdDeleteEquipment(chatID, args, now)
	case "peminjaman":
		b.cmdAllBorrows(chatID, now)
	default:
		b.SendMessage(chatID, "Perintah tidak dikenal. /help untuk daftar perintah")
	}
}

func (b *Bot) cmdStart(chatID int64) {
	sess, err := b.authService.Session(chatID, time.Now().In(b.cfg.Timezone))
	if err == nil {
		b.SendMessage(chatID, fmt.Sprintf("👋 Selamat datang kembali, %s!\n\n/jadwal untuk melihat kegiatan", sess.Name))
		return
	}

	b.SendMessage(chatID, `👋 <b>Selamat datang di UKM Catur!</b>

Aku membantu mengurus jadwal kegiatan dan peminjaman alat.

/login email password — masuk
/daftar nama | email | password — buat akun
/jadwal — lihat jadwal kegiatan (tanpa login)

/help untuk perintah lengkap`)
}

func (b *Bot) cmdHelp(chatID int64) {
	text := `<b>Perintah:</b>

<b>Akun</b>
/login email password — masuk
/daftar nama | email | password — buat akun
/logout — keluar
/profil — lihat profil
/ubahprofil nama | no hp | alamat
/gantipassword lama baru konfirmasi
/hapusakun HAPUS — hapus akun permanen

<b>Kegiatan</b>
/jadwal — kegiatan yang akan datang
/jadwal selesai — kegiatan yang sudah lewat
/jadwal semua — semua kegiatan
/kegiatanku — kegiatan yang kuikuti
/export — unduh kalender .ics

<b>Alat</b>
/alat — daftar alat klub
/pinjaman — pinjamanku

<b>Pengurus</b>
/tambahjadwal judul | tipe | tanggal • jam | lokasi | maks | deskripsi
/ubahjadwal id | judul | tipe | tanggal • jam | lokasi | maks | deskripsi
/hapusjadwal id
/tambahalat nama | tipe | merek | harga | jumlah | kondisi | deskripsi
/ubahalat id | nama | tipe | merek | harga | jumlah | kondisi | deskripsi
/hapusalat id
/peminjaman — semua peminjaman`

	b.SendMessage(chatID, text)
}

func (b *Bot) cmdLogin(chatID int64, msgID int, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.SendMessage(chatID, "Format: /login email password")
		return
	}

	// The message carries a plaintext password; take it off the chat
	// history as soon as possible.
	b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))

	sess, err := b.authService.Login(chatID, fields[0], fields[1])
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	greeting := fmt.Sprintf("✅ Halo, %s!", sess.Name)
	if sess.IsAdmin() {
		greeting += " (pengurus)"
	}
	b.SendMessage(chatID, greeting+"\n\n/jadwal untuk melihat kegiatan")
}

func (b *Bot) cmdRegister(chatID int64, args string) {
	parts := strings.Split(args, "|")
	if len(parts) != 3 {
		b.SendMessage(chatID, "Format: /daftar nama | email | password")
		return
	}

	form := &service.RegisterForm{
		Name:     strings.TrimSpace(parts[0]),
		Email:    strings.TrimSpace(parts[1]),
		Password: strings.TrimSpace(parts[2]),
	}
	user, err := b.authService.Register(form)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	b.SendMessage(chatID, fmt.Sprintf("✅ Akun untuk <b>%s</b> berhasil dibuat.\n\nSekarang masuk dengan /login %s password", user.Name, user.Email))
}

func (b *Bot) cmdLogout(chatID int64) {
	if err := b.authService.Logout(chatID); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, "👋 Sampai jumpa!")
}

func (b *Bot) cmdSchedules(chatID int64, args string, now time.Time) {
	tab := tabFromArg(args)

	schedules, err := b.scheduleService.List(tab, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	text := scheduleHeader(tab) + "\n\n" + b.scheduleService.FormatList(schedules, tab, now)
	b.SendMessageWithKeyboard(chatID, text, scheduleListKeyboard(schedules, tab))
}

func (b *Bot) cmdMyActivities(chatID int64, now time.Time) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	activities, err := b.scheduleService.MyActivities(sess, domain.TabAll, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	if len(activities) == 0 {
		b.SendMessage(chatID, "Kamu belum terdaftar di kegiatan apa pun.\n\n/jadwal untuk mendaftar")
		return
	}

	var sb strings.Builder
	sb.WriteString("♟ <b>Kegiatanku:</b>\n\n")
	for _, a := range activities {
		marker := ""
		if !a.Schedule.IsUpcoming(now) {
			marker = " ✔️"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b>%s\n", a.Schedule.TypeEmoji(), a.Schedule.Title, marker))
		if a.Schedule.DateTime != "" {
			sb.WriteString("  📅 " + a.Schedule.DateTime + "\n")
		}
		sb.WriteString("\n")
	}
	b.SendMessageWithKeyboard(chatID, sb.String(), myActivitiesKeyboard(activities, now))
}

func (b *Bot) cmdEquipment(chatID int64) {
	equipment, err := b.equipmentService.List()
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	text := "🧰 <b>Alat klub:</b>\n\n" + b.equipmentService.FormatList(equipment)
	b.SendMessageWithKeyboard(chatID, text, equipmentListKeyboard(equipment))
}

func (b *Bot) cmdMyBorrows(chatID int64, now time.Time) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	borrows, err := b.equipmentService.MyBorrows(sess)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	text := "📦 <b>Pinjamanku:</b>\n\n" + b.equipmentService.FormatBorrows(borrows)
	if kb := borrowListKeyboard(borrows); kb != nil {
		b.SendMessageWithKeyboard(chatID, text, *kb)
		return
	}
	b.SendMessage(chatID, text)
}

func (b *Bot) cmdProfile(chatID int64, now time.Time) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	user, err := b.userService.Profile(sess)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	b.SendMessage(chatID, b.userService.FormatProfile(user))
}

func (b *Bot) cmdUpdateProfile(chatID int64, args string, now time.Time) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	if args == "" {
		b.SendMessage(chatID, "Format: /ubahprofil nama | no hp | alamat")
		return
	}

	form, err := b.userService.ParseProfileArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	updated, err := b.userService.UpdateProfile(sess, form)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Profil diperbarui, %s!", updated.Name))
}

func (b *Bot) cmdChangePassword(chatID int64, msgID int, args string, now time.Time) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 3 {
		b.SendMessage(chatID, "Format: /gantipassword lama baru konfirmasi")
		return
	}

	b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID))

	if err := b.userService.ChangePassword(sess, fields[0], fields[1], fields[2]); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, "✅ Password berhasil diganti")
}

func (b *Bot) cmdDeleteAccount(chatID int64, args string, now time.Time) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	// Typed confirmation, this one is not undoable.
	if args != "HAPUS" {
		b.SendMessage(chatID, "⚠️ Menghapus akun tidak bisa dibatalkan.\n\nKetik /hapusakun HAPUS untuk melanjutkan")
		return
	}

	if err := b.userService.DeleteAccount(sess); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, "Akun telah dihapus. Terima kasih sudah bergabung 🙏")
}

func (b *Bot) cmdExport(chatID int64, now time.Time) {
	ics, err := b.calendarService.ExportICS(now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	err = b.SendDocument(chatID, "ukm-catur.ics", []byte(ics), "📅 Kegiatan UKM Catur yang akan datang")
	if err != nil {
		b.SendMessage(chatID, "❌ Gagal mengirim file: "+err.Error())
	}
}

// === Admin commands ===

func (b *Bot) adminSession(chatID int64, now time.Time) (*domain.Session, bool) {
	sess, err := b.authService.Session(chatID, now)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return nil, false
	}
	if !sess.IsAdmin() {
		b.SendMessage(chatID, "⛔ Perintah ini hanya untuk pengurus")
		return nil, false
	}
	return sess, true
}

func (b *Bot) cmdAddSchedule(chatID int64, args string, now time.Time) {
	sess, ok := b.adminSession(chatID, now)
	if !ok {
		return
	}

	form, err := b.scheduleService.ParseScheduleArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	created, err := b.scheduleService.Create(sess, form)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Kegiatan <b>%s</b> ditambahkan (#%d)", created.Title, created.ID))
}

// splitIDArgs separates a leading numeric id from the rest of the form.
func splitIDArgs(args string) (int64, string, error) {
	parts := strings.SplitN(args, "|", 2)
	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("id harus angka")
	}
	if len(parts) < 2 {
		return id, "", nil
	}
	return id, strings.TrimSpace(parts[1]), nil
}

func (b *Bot) cmdEditSchedule(chatID int64, args string, now time.Time) {
	sess, ok := b.adminSession(chatID, now)
	if !ok {
		return
	}

	id, rest, err := splitIDArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ Format: /ubahjadwal id | judul | tipe | tanggal • jam | lokasi | maks | deskripsi")
		return
	}

	form, err := b.scheduleService.ParseScheduleArgs(rest)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	if err := b.scheduleService.Update(sess, id, form); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Kegiatan #%d diperbarui", id))
}

func (b *Bot) cmdDeleteSchedule(chatID int64, args string, now time.Time) {
	if _, ok := b.adminSession(chatID, now); !ok {
		return
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Format: /hapusjadwal id")
		return
	}

	sched, err := b.scheduleService.Get(id)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	text := fmt.Sprintf("Hapus kegiatan <b>%s</b> (#%d)?", sched.Title, sched.ID)
	b.SendMessageWithKeyboard(chatID, text, confirmDeleteKeyboard("delschedok", sched.ID))
}

func (b *Bot) cmdAddEquipment(chatID int64, args string, now time.Time) {
	sess, ok := b.adminSession(chatID, now)
	if !ok {
		return
	}

	form, err := b.equipmentService.ParseEquipmentArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	if err := b.equipmentService.Create(sess, form); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Alat <b>%s</b> ditambahkan", form.Name))
}

func (b *Bot) cmdEditEquipment(chatID int64, args string, now time.Time) {
	sess, ok := b.adminSession(chatID, now)
	if !ok {
		return
	}

	id, rest, err := splitIDArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ Format: /ubahalat id | nama | tipe | merek | harga | jumlah | kondisi | deskripsi")
		return
	}

	form, err := b.equipmentService.ParseEquipmentArgs(rest)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	if err := b.equipmentService.Update(sess, id, form); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Alat #%d diperbarui", id))
}

func (b *Bot) cmdDeleteEquipment(chatID int64, args string, now time.Time) {
	if _, ok := b.adminSession(chatID, now); !ok {
		return
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Format: /hapusalat id")
		return
	}

	e, err := b.equipmentService.Get(id)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	text := fmt.Sprintf("Hapus alat <b>%s</b> (#%d)?", e.Name, e.ID)
	b.SendMessageWithKeyboard(chatID, text, confirmDeleteKeyboard("delalatok", e.ID))
}

func (b *Bot) cmdAllBorrows(chatID int64, now time.Time) {
	sess, ok := b.adminSession(chatID, now)
	if !ok {
		return
	}

	borrows, err := b.equipmentService.AllBorrows(sess)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	b.SendMessage(chatID, "📦 <b>Semua peminjaman:</b>\n\n"+b.equipmentService.FormatBorrows(borrows))
}

func tabFromArg(args string) domain.Tab {
	switch strings.ToLower(args) {
	case "selesai":
		return domain.TabCompleted
	case "semua":
		return domain.TabAll
	default:
		return domain.TabUpcoming
	}
}

func scheduleHeader(tab domain.Tab) string {
	switch tab {
	case domain.TabCompleted:
		return "✔️ <b>Kegiatan selesai</b>"
	case domain.TabAll:
		return "📅 <b>Semua kegiatan</b>"
	default:
		return "📅 <b>Kegiatan yang akan datang</b>"
	}
}
