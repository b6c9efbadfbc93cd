package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"signalbot/internal/models"

	"github.com/xuri/excelize/v2"
)

const usersSheet = "Пользователи"

var userExportHeaders = []string{
	"Telegram ID", "Username", "Имя", "Фамилия", "Телефон", "Язык",
	"Подписка", "Регистрация", "Депозит", "VIP", "Player ID", "Первый депозит, $",
	"Дата депозита", "Последняя активность", "Дата регистрации",
}

// exportUsersToExcel создает Excel файл с данными пользователей
func (b *Bot) exportUsersToExcel(_ context.Context, users []*models.User) (string, error) {
	exportPath := b.config.Bot.ExportPath
	if exportPath == "" {
		exportPath = "exports"
	}
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(usersSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("error creating style: %w", err)
	}

	for i, header := range userExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(usersSheet, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(userExportHeaders), 1)
	_ = f.SetCellStyle(usersSheet, "A1", lastHeader, headerStyle)

	for i, user := range users {
		row := i + 2
		values := []interface{}{
			user.TelegramID,
			user.Username,
			user.FirstName,
			user.LastName,
			user.Phone,
			user.Language,
			boolToYesNo(user.IsSubscribed),
			boolToYesNo(user.IsRegistered),
			boolToYesNo(user.HasDeposit),
			boolToYesNo(user.VIPStatus),
			user.PartnerID,
			user.FirstDepositAmount,
			formatOptionalTime(user.FirstDepositDate),
			user.LastActivity.Format("02.01.2006 15:04"),
			user.RegistrationDate.Format("02.01.2006 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(usersSheet, cell, value)
		}
	}

	// Настраиваем ширину колонок
	_ = f.SetColWidth(usersSheet, "A", "A", 15)
	_ = f.SetColWidth(usersSheet, "B", "F", 18)
	_ = f.SetColWidth(usersSheet, "G", "J", 12)
	_ = f.SetColWidth(usersSheet, "K", "O", 20)
	_ = f.SetPanes(usersSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("users_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("users", len(users)).Msg("Users Excel file created")
	return filePath, nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// boolToYesNo преобразует bool в "Да"/"Нет"
func boolToYesNo(b bool) string {
	if b {
		return "Да"
	}
	return "Нет"
}
