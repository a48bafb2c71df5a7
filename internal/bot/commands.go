package bot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/export"
	"github.com/tukangsapu/sapu/internal/scoring"
)

const (
	petugasHelp = `Perintah yang tersedia:
/link <nama> - Buat tautan formulir laporan atas nama petugas
/ranking [semester] [tahun] - Lihat peringkat kebersihan kelas
/recap [tanggal] - Rekap laporan harian (format 2006-01-02)
/help - Tampilkan pesan ini`

	adminHelp = petugasHelp + `

Perintah admin:
/hapus <id-laporan> - Hapus laporan beserta fotonya

Contoh:
/link Budi
/ranking 1 2025
/hapus 7f0a...`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routePetugasCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":   b.handleStart,
		"help":    b.handleHelp,
		"link":    b.handleLink,
		"ranking": b.handleRanking,
		"recap":   b.handleRecap,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"hapus": b.handleDelete,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID, b.admins[msg.From.ID])
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routePetugasCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
			return
		}
	}

	b.sendHelp(msg.Chat.ID, b.admins[msg.From.ID])
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	return b.handleHelp(msg)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	b.sendHelp(msg.Chat.ID, b.admins[msg.From.ID])
	return nil
}

func (b *Bot) handleLink(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return fmt.Errorf("sebutkan nama petugas, contoh: /link Budi")
	}

	base := b.service.Config.Recap.SubmitBaseURL
	if base == "" {
		return fmt.Errorf("submit_base_url belum dikonfigurasi")
	}

	link := fmt.Sprintf("%s?petugas=%s", base, url.QueryEscape(name))
	b.sendMessage(msg.Chat.ID, fmt.Sprintf("Formulir laporan untuk %s:\n%s", name, link))
	return nil
}

func (b *Bot) handleRanking(msg *tgbotapi.Message) error {
	now := time.Now()
	semester := scoring.SemesterOf(now)
	year := now.Year()

	args := strings.Fields(msg.CommandArguments())
	if len(args) >= 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || (parsed != 1 && parsed != 2) {
			return fmt.Errorf("semester harus 1 atau 2")
		}
		semester = parsed
	}
	if len(args) >= 2 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("tahun tidak valid: %s", args[1])
		}
		year = parsed
	}

	entries, err := b.service.Ranking(year, semester)
	if err != nil {
		return fmt.Errorf("gagal memuat peringkat: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Peringkat Kebersihan %d Semester %d\n\n", year, semester)
	for i, entry := range entries {
		fmt.Fprintf(&sb, "%d. %s: skor %.2f (%d laporan, %d%% bersih)\n",
			i+1, entry.Nama, entry.AverageScore, entry.ReportCount, entry.CleanPercentage)
	}
	if len(entries) == 0 {
		sb.WriteString("Belum ada kelas terdaftar")
	}

	b.sendMessage(msg.Chat.ID, sb.String())
	return nil
}

func (b *Bot) handleRecap(msg *tgbotapi.Message) error {
	date := strings.TrimSpace(msg.CommandArguments())
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("tanggal harus berformat 2006-01-02")
	}

	reports, err := b.service.ReportsForDate(date)
	if err != nil {
		return fmt.Errorf("gagal memuat laporan: %w", err)
	}

	b.sendMessage(msg.Chat.ID, export.BuildDailyRecap(reports, date, b.service.Config.Recap.KetuaOSIS))
	return nil
}

func (b *Bot) handleDelete(msg *tgbotapi.Message) error {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		return fmt.Errorf("sebutkan id laporan, contoh: /hapus <id>")
	}

	if err := b.service.DeleteReport(context.Background(), id); err != nil {
		return fmt.Errorf("gagal menghapus laporan: %w", err)
	}

	b.sendMessage(msg.Chat.ID, fmt.Sprintf("Laporan %s dihapus", id))
	return nil
}

func (b *Bot) sendHelp(chatID int64, isAdmin bool) {
	if isAdmin {
		b.sendMessage(chatID, adminHelp)
		return
	}
	b.sendMessage(chatID, petugasHelp)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Error.Printf("Failed to send message: %v", err)
	}
}
