package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazadus/go-songselect/internal/config"
	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/importer"
	"github.com/hazadus/go-songselect/internal/library"
	"github.com/hazadus/go-songselect/internal/ruleset"
)

// captureOutput перехватывает stdout и stderr во время выполнения функции
func captureOutput(t *testing.T, fn func()) string {
	// Сохраняем оригинальные stdout и stderr
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Ошибка создания pipe: %v", err)
	}

	os.Stdout = w
	os.Stderr = w

	fn()

	// Восстанавливаем оригинальные stdout и stderr
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("Ошибка чтения результата: %v", err)
	}
	return buf.String()
}

// createTestApplication создает тестовое приложение с временными данными
func createTestApplication(t *testing.T, tempDir string) *Application {
	testConfig := config.Default()
	testConfig.SongsDir = filepath.Join(tempDir, "Songs")
	testConfig.DataFile = filepath.Join(tempDir, "data.yaml")

	testData := data.NewAppData()
	lib := library.NewManager(testData, testConfig.DataFile)

	return &Application{
		Config:   testConfig,
		Data:     testData,
		Library:  lib,
		Importer: importer.NewService(lib, nil, nil, testConfig.SongsDir),
	}
}

// addTestSets добавляет в библиотеку набор для osu! и набор для taiko
func addTestSets(app *Application) {
	app.Data.AddSet(data.BeatmapSet{
		ID:       1,
		Metadata: data.Metadata{Artist: "MONACA", Title: "Black Song", Author: "Some Guy"},
		Length:   200,
		Beatmaps: []data.Beatmap{
			{ID: 10, Version: "Normal", Difficulty: data.Difficulty{OverallDifficulty: 3}},
			{ID: 11, Version: "Hard", Difficulty: data.Difficulty{OverallDifficulty: 5}},
		},
	})
	app.Data.AddSet(data.BeatmapSet{
		ID:       2,
		Metadata: data.Metadata{Artist: "Artist B", Title: "Ghost", Author: "Drummer"},
		URL:      "https://s3.example.com/test-bucket/2.osz",
		Beatmaps: []data.Beatmap{
			{ID: 20, Version: "Oni", Ruleset: ruleset.Taiko, Difficulty: data.Difficulty{OverallDifficulty: 6}},
		},
	})
}

// writeSongFolder создает папку песни с одной сложностью
func writeSongFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := `osu file format v14

[General]
AudioFilename: audio.mp3
PreviewTime: 5000
Mode: 0

[Metadata]
Title:Black Song
Artist:MONACA
Creator:Some Guy
Version:Normal
BeatmapID:2001
BeatmapSetID:1234

[Difficulty]
OverallDifficulty:4
`
	if err := os.WriteFile(filepath.Join(dir, "Normal.osu"), []byte(content), 0o644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}
	return dir
}

// TestCmdList проверяет, что команда `list` выводит видимые наборы
func TestCmdList(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	listCmd := app.createListCommand()
	output := captureOutput(t, func() {
		listCmd.SetArgs([]string{})
		if err := listCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды list: %v", err)
		}
	})

	expectedStrings := []string{
		"📚 Найдено наборов: 1 из 2",
		"MONACA",
		"Black Song",
		"Normal",
		"Hard",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды list не содержит ожидаемую строку '%s': %s", expected, output)
		}
	}
	if strings.Contains(output, "Ghost") {
		t.Errorf("Набор для taiko не должен отображаться в режиме osu: %s", output)
	}
}

// TestCmdListFilters проверяет флаги режима и поиска команды `list`
func TestCmdListFilters(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	listCmd := app.createListCommand()
	output := captureOutput(t, func() {
		listCmd.SetArgs([]string{"--ruleset", "taiko", "--search", "ghost"})
		if err := listCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды list: %v", err)
		}
	})

	if !strings.Contains(output, "Ghost") || !strings.Contains(output, "Oni") {
		t.Errorf("Команда list не нашла набор для taiko: %s", output)
	}
	if strings.Contains(output, "Black Song") {
		t.Errorf("Набор для osu! не должен отображаться: %s", output)
	}

	listCmd = app.createListCommand()
	output = captureOutput(t, func() {
		listCmd.SetArgs([]string{"--search", "nothing here"})
		if err := listCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды list: %v", err)
		}
	})
	if !strings.Contains(output, "🔍 Ничего не найдено") {
		t.Errorf("Команда list не сообщила о пустом результате: %s", output)
	}
}

// TestCmdListInvalidSort проверяет обработку неизвестного режима сортировки
func TestCmdListInvalidSort(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	listCmd := app.createListCommand()
	listCmd.SetOut(io.Discard)
	listCmd.SetErr(io.Discard)
	listCmd.SetArgs([]string{"--sort", "bpm"})
	if err := listCmd.Execute(); err == nil {
		t.Error("Ожидалась ошибка для неизвестного режима сортировки")
	}
}

// TestCmdListEmpty проверяет, что команда `list` корректно обрабатывает пустую библиотеку
func TestCmdListEmpty(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	listCmd := app.createListCommand()
	output := captureOutput(t, func() {
		listCmd.SetArgs([]string{})
		if err := listCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды list: %v", err)
		}
	})

	if !strings.Contains(output, "📚 Библиотека пуста") {
		t.Errorf("Команда list не отобразила сообщение о пустой библиотеке: %s", output)
	}
}

// TestCmdShowRaw проверяет вывод Markdown-страницы набора
func TestCmdShowRaw(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	showCmd := app.createShowCommand()
	output := captureOutput(t, func() {
		showCmd.SetArgs([]string{"1", "--raw"})
		if err := showCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды show: %v", err)
		}
	})

	for _, expected := range []string{"# MONACA - Black Song", "Some Guy", "| Hard |"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды show не содержит '%s': %s", expected, output)
		}
	}
}

// TestCmdShowUnknownSet проверяет ошибку для несуществующего набора
func TestCmdShowUnknownSet(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	showCmd := app.createShowCommand()
	showCmd.SetOut(io.Discard)
	showCmd.SetErr(io.Discard)
	showCmd.SetArgs([]string{"42"})
	err := showCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "ошибка поиска набора") {
		t.Errorf("Ожидалась ошибка поиска набора, получено: %v", err)
	}
}

// TestCmdSelect проверяет выбор карты и его сохранение
func TestCmdSelect(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	selectCmd := app.createSelectCommand()
	output := captureOutput(t, func() {
		selectCmd.SetArgs([]string{"11"})
		if err := selectCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды select: %v", err)
		}
	})

	if !strings.Contains(output, "🎯 Выбрана карта [11] MONACA - Black Song [Hard]") {
		t.Errorf("Команда select не отобразила выбранную карту: %s", output)
	}
	if app.Data.SelectedBeatmapID != 11 {
		t.Errorf("Ожидался сохраненный выбор 11, получено %d", app.Data.SelectedBeatmapID)
	}

	saved := data.NewAppData()
	if err := saved.LoadData(app.Config.DataFile); err != nil {
		t.Fatalf("Ошибка чтения сохраненных данных: %v", err)
	}
	if saved.SelectedBeatmapID != 11 {
		t.Errorf("В файле данных ожидался выбор 11, получено %d", saved.SelectedBeatmapID)
	}
}

// TestCmdSelectUnknown проверяет откат к карте по умолчанию
func TestCmdSelectUnknown(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)
	app.Data.SelectedBeatmapID = 10

	selectCmd := app.createSelectCommand()
	output := captureOutput(t, func() {
		selectCmd.SetArgs([]string{"999"})
		if err := selectCmd.Execute(); err != nil {
			t.Errorf("Команда select не должна завершаться ошибкой: %v", err)
		}
	})

	if !strings.Contains(output, "Карта 999 не найдена") || !strings.Contains(output, "no beatmaps available!") {
		t.Errorf("Команда select не сообщила о карте по умолчанию: %s", output)
	}
	if app.Data.SelectedBeatmapID != 0 {
		t.Errorf("Сохраненный выбор должен сброситься, получено %d", app.Data.SelectedBeatmapID)
	}
}

// TestCmdDelete проверяет, что команда `delete` удаляет указанный набор
func TestCmdDelete(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	deleteCmd := app.createDeleteCommand(context.Background())
	output := captureOutput(t, func() {
		deleteCmd.SetArgs([]string{"1"})
		if err := deleteCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды delete: %v", err)
		}
	})

	if !strings.Contains(output, "🗑️  Удаляем набор: MONACA - Black Song") {
		t.Errorf("Команда delete не отобразила ожидаемый вывод: %s", output)
	}
	if len(app.Data.Sets) != 1 {
		t.Fatalf("Ожидался 1 набор после удаления, получено %d", len(app.Data.Sets))
	}
	if app.Data.Sets[0].Metadata.Title != "Ghost" {
		t.Errorf("Ожидался набор Ghost, получено: %s", app.Data.Sets[0].Metadata.Title)
	}
}

// TestCmdDeleteWithoutMirror проверяет удаление набора с архивом без настроенного зеркала
func TestCmdDeleteWithoutMirror(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)

	deleteCmd := app.createDeleteCommand(context.Background())
	output := captureOutput(t, func() {
		deleteCmd.SetArgs([]string{"2"})
		if err := deleteCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды delete: %v", err)
		}
	})

	if !strings.Contains(output, "⚠️  Предупреждение: не удалось удалить архив из S3") {
		t.Errorf("Команда delete не предупредила об ошибке зеркала: %s", output)
	}
	if !strings.Contains(output, "✅ Набор успешно удален из библиотеки") {
		t.Errorf("Набор должен удаляться из библиотеки даже без зеркала: %s", output)
	}
}

// TestCmdDeleteInvalidID проверяет обработку неверного ID в команде delete
func TestCmdDeleteInvalidID(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	deleteCmd := app.createDeleteCommand(context.Background())
	output := captureOutput(t, func() {
		deleteCmd.SetArgs([]string{"invalid"})
		if err := deleteCmd.Execute(); err != nil {
			t.Errorf("Команда delete завершилась с ошибкой при неверном ID: %v", err)
		}
	})

	if !strings.Contains(output, "❌ Ошибка: неверный ID") {
		t.Errorf("Команда delete не отобразила ошибку для неверного ID: %s", output)
	}
}

// TestCmdDeleteAll проверяет очистку библиотеки
func TestCmdDeleteAll(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	addTestSets(app)
	app.Data.SelectedBeatmapID = 10

	deleteAllCmd := app.createDeleteAllCommand()
	output := captureOutput(t, func() {
		deleteAllCmd.SetArgs([]string{})
		if err := deleteAllCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды delete-all: %v", err)
		}
	})

	if !strings.Contains(output, "🗑️  Удалено наборов: 2") {
		t.Errorf("Команда delete-all не отобразила количество наборов: %s", output)
	}
	if len(app.Data.Sets) != 0 || app.Data.SelectedBeatmapID != 0 {
		t.Errorf("Библиотека должна быть пуста, наборов: %d, выбор: %d",
			len(app.Data.Sets), app.Data.SelectedBeatmapID)
	}
}

// TestCmdImport проверяет импорт папки песни и повторный импорт
func TestCmdImport(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	dir := writeSongFolder(t)

	importCmd := app.createImportCommand(context.Background())
	output := captureOutput(t, func() {
		importCmd.SetArgs([]string{dir})
		if err := importCmd.Execute(); err != nil {
			t.Errorf("Ошибка выполнения команды import: %v", err)
		}
	})

	if !strings.Contains(output, "✅ Добавлен набор [1234] MONACA - Black Song") {
		t.Errorf("Команда import не отобразила добавленный набор: %s", output)
	}
	if len(app.Data.Sets) != 1 {
		t.Fatalf("Ожидался 1 набор, получено %d", len(app.Data.Sets))
	}
	if _, err := os.Stat(app.Config.DataFile); err != nil {
		t.Errorf("Файл данных не сохранен: %v", err)
	}

	importCmd = app.createImportCommand(context.Background())
	output = captureOutput(t, func() {
		importCmd.SetArgs([]string{dir})
		if err := importCmd.Execute(); err != nil {
			t.Errorf("Ошибка повторного импорта: %v", err)
		}
	})

	if !strings.Contains(output, "ℹ️  Набор уже есть в библиотеке") {
		t.Errorf("Повторный импорт должен быть проигнорирован: %s", output)
	}
	if len(app.Data.Sets) != 1 {
		t.Errorf("Повторный импорт не должен добавлять набор, наборов: %d", len(app.Data.Sets))
	}
}

// TestCmdImportUploadWithoutMirror проверяет --upload без настроенного зеркала
func TestCmdImportUploadWithoutMirror(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	importCmd := app.createImportCommand(context.Background())
	importCmd.SetOut(io.Discard)
	importCmd.SetErr(io.Discard)
	importCmd.SetArgs([]string{writeSongFolder(t), "--upload"})
	err := importCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "зеркало S3 не настроено") {
		t.Errorf("Ожидалась ошибка о ненастроенном зеркале, получено: %v", err)
	}
	if len(app.Data.Sets) != 0 {
		t.Errorf("Набор не должен добавляться, наборов: %d", len(app.Data.Sets))
	}
}

// TestCmdPullWithoutMirror проверяет команду pull без настроенного зеркала
func TestCmdPullWithoutMirror(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	pullCmd := app.createPullCommand(context.Background())
	pullCmd.SetOut(io.Discard)
	pullCmd.SetErr(io.Discard)
	pullCmd.SetArgs([]string{"1234 MONACA - Black Song.osz"})
	err := pullCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "зеркало S3 не настроено") {
		t.Errorf("Ожидалась ошибка о ненастроенном зеркале, получено: %v", err)
	}
}

// TestCmdPreviewInvalidArgs проверяет ошибки команды preview до запуска воспроизведения
func TestCmdPreviewInvalidArgs(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	testCases := []struct {
		arg      string
		expected string
	}{
		{"abc", "неверный ID набора"},
		{"42", "ошибка поиска набора"},
	}

	for _, tc := range testCases {
		previewCmd := app.createPreviewCommand(context.Background())
		previewCmd.SetOut(io.Discard)
		previewCmd.SetErr(io.Discard)
		previewCmd.SetArgs([]string{tc.arg})
		err := previewCmd.Execute()
		if err == nil || !strings.Contains(err.Error(), tc.expected) {
			t.Errorf("Для '%s' ожидалась ошибка '%s', получено: %v", tc.arg, tc.expected, err)
		}
	}
}

// TestCmdImportInvalidArgs проверяет обработку неверных аргументов в команде import
func TestCmdImportInvalidArgs(t *testing.T) {
	app := createTestApplication(t, t.TempDir())

	importCmd := app.createImportCommand(context.Background())

	var buf bytes.Buffer
	importCmd.SetOut(&buf)
	importCmd.SetErr(&buf)
	importCmd.SetArgs([]string{})

	if err := importCmd.Execute(); err == nil {
		t.Error("Ожидалась ошибка при выполнении команды import без аргументов")
	}

	output := buf.String()
	if !strings.Contains(output, "requires exactly 1 arg") && !strings.Contains(output, "accepts 1 arg") {
		t.Errorf("Команда import не отобразила ошибку о неверных аргументах: %s", output)
	}
}

// TestRootCommand проверяет набор подкоманд
func TestRootCommand(t *testing.T) {
	app := createTestApplication(t, t.TempDir())
	root := app.createRootCommand(context.Background())

	for _, name := range []string{"import", "list", "show", "select", "delete", "delete-all", "preview", "pull", "tui"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Команда %s не зарегистрирована", name)
		}
	}
}
