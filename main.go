package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"interview-trainer/internal/api"
	"interview-trainer/internal/config"
	"interview-trainer/internal/interview"
	"interview-trainer/internal/ledger"
	"interview-trainer/internal/media"
	"interview-trainer/internal/metrics"
	"interview-trainer/internal/pipeline"
	"interview-trainer/internal/session"
	"interview-trainer/internal/speech"
	"interview-trainer/internal/storage"
)

const localUserID = "local"

var (
	flagConfig = "config/interview.yaml"
	flagVoices = "config/voices.yaml"
	flagPlan   = ""
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "interview-trainer",
		Short: "Тренажёр собеседований с AI-интервьюером",
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", flagConfig, "путь к конфигурации интервью")
	rootCmd.PersistentFlags().StringVar(&flagVoices, "voices", flagVoices, "путь к каталогу голосов")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Запустить тренировочное интервью",
		RunE:  runInterview,
	}
	runCmd.Flags().StringVar(&flagPlan, "plan", "", "идентификатор тарифного плана (по умолчанию бесплатный)")

	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Показать сохранённые результаты",
		RunE:  listResults,
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "Показать каталог голосов интервьюера",
		RunE:  listVoices,
	}

	rootCmd.AddCommand(runCmd, resultsCmd, voicesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInterview(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Запуск тренажёра собеседований...")

	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Файл .env не найден, используются переменные окружения")
	}

	openaiCfg := config.LoadOpenAIConfig()
	if err := openaiCfg.ValidateConfig(); err != nil {
		log.Fatalf("Ошибка конфигурации OpenAI: %v", err)
	}

	appCfg := config.LoadAppConfig()

	// Загружаем конфигурацию интервью
	cfg, err := config.Load(flagConfig)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации интервью: %v", err)
	}

	voices, err := config.LoadVoices(flagVoices)
	if err != nil {
		log.Fatalf("Ошибка загрузки каталога голосов: %v", err)
	}

	// Инициализируем сервисы
	fmt.Println("🔧 Инициализация сервисов...")
	ctx := context.Background()

	store, err := storage.Open(ctx, appCfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Ошибка открытия хранилища: %v", err)
	}
	defer store.Close()
	fmt.Println("✅ Хранилище открыто:", appCfg.Storage.DBPath)

	client := api.NewClient(openaiCfg)
	questionPipeline := pipeline.New(client)
	fmt.Println("✅ Конвейер вопросов инициализирован")

	mediaManager := media.NewManager(media.SystemDevices(
		appCfg.Media.PlayerCommand,
		appCfg.Media.RecorderCommand,
		appCfg.Media.EnableCamera,
	))
	bridge := speech.NewBridge(client, client, mediaManager)
	fmt.Println("✅ Медиа и мост речи инициализированы")

	plan, err := resolvePlan(cfg)
	if err != nil {
		log.Fatalf("Ошибка выбора плана: %v", err)
	}

	usage, err := store.GetProfileUsage(ctx, localUserID)
	if err != nil {
		log.Fatalf("Ошибка загрузки расхода токенов: %v", err)
	}

	tokenLedger := ledger.New(plan, usage.TokensUsed)
	fmt.Printf("✅ План %q: израсходовано %d из %d токенов\n", plan.Name, tokenLedger.Used(), tokenLedger.Limit())

	stats := metrics.NewMetrics()

	profile, err := ensureJobProfile(ctx, store)
	if err != nil {
		log.Fatalf("Ошибка подготовки профиля вакансии: %v", err)
	}

	machine := session.NewMachine(session.Deps{
		Config:   cfg,
		Voices:   voices,
		Pipeline: questionPipeline,
		Speech:   bridge,
		Media:    mediaManager,
		Ledger:   tokenLedger,
		Store:    store,
		Metrics:  stats,
		UserID:   localUserID,
		PlanID:   plan.ID,
	})
	defer machine.Close()

	if err := machine.Start(ctx, profile.ID); err != nil {
		log.Fatalf("Ошибка запуска сессии: %v", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if err := selectionScreen(ctx, machine, cfg, voices, scanner); err != nil {
			if interview.IsQuota(err) {
				fmt.Println("\n🚫 " + err.Error())
				fmt.Println("💳 Смените тарифный план, чтобы продолжить тренировки.")
				break
			}
			return err
		}

		done, err := interviewScreen(ctx, machine, scanner)
		if err != nil {
			return err
		}
		if done {
			break
		}

		retake, err := resultsScreen(ctx, machine, appCfg.Storage.ResultsDir, store, scanner)
		if err != nil {
			return err
		}
		if !retake {
			break
		}
	}

	printStats(stats)
	return nil
}

// selectionScreen последовательно выбирает язык, голос и уровень
func selectionScreen(ctx context.Context, machine *session.Machine, cfg *config.Config, voices *config.VoiceCatalog, scanner *bufio.Scanner) error {
	fmt.Println("\n📋 Настройка интервью")

	// Язык
	fmt.Printf("Доступные языки: %s\n", strings.Join(cfg.GetLanguages(), ", "))
	fmt.Printf("Язык интервью [%s]: ", cfg.Interview.DefaultLanguage)
	lang := readLine(scanner)
	if lang == "" {
		lang = cfg.Interview.DefaultLanguage
	}
	if err := machine.SelectLanguage(lang); err != nil {
		fmt.Println("❌ " + err.Error())
		return selectionScreen(ctx, machine, cfg, voices, scanner)
	}

	// Голос
	available := voices.ForLanguage(lang)
	if len(available) == 0 {
		fmt.Println("❌ Для этого языка нет голосов в каталоге")
		return selectionScreen(ctx, machine, cfg, voices, scanner)
	}
	fmt.Println("Голоса интервьюера:")
	for _, v := range available {
		fmt.Printf("  • %s — %s\n", v.ID, v.Name)
	}
	fmt.Printf("Голос [%s]: ", available[0].ID)
	voiceID := readLine(scanner)
	if voiceID == "" {
		voiceID = available[0].ID
	}
	if err := machine.SelectVoice(voiceID); err != nil {
		fmt.Println("❌ " + err.Error())
		return selectionScreen(ctx, machine, cfg, voices, scanner)
	}

	// Уровень
	fmt.Println("Уровни сложности:")
	for _, l := range cfg.Levels {
		fmt.Printf("  %d. %s (%d-%d вопросов)\n", l.ID, l.Title, l.MinQuestions, l.MaxQuestions)
	}
	fmt.Print("Уровень: ")
	levelID, err := strconv.Atoi(readLine(scanner))
	if err != nil {
		fmt.Println("❌ Введите номер уровня")
		return selectionScreen(ctx, machine, cfg, voices, scanner)
	}

	fmt.Println("🧠 Генерирую вопросы...")
	if err := machine.SelectLevel(ctx, levelID); err != nil {
		if interview.IsQuota(err) {
			return err
		}
		fmt.Println("❌ " + err.Error())
		fmt.Println("Попробуйте ещё раз.")
		return selectionScreen(ctx, machine, cfg, voices, scanner)
	}

	return nil
}

// interviewScreen — цикл вопросов и ответов.
// Возвращает true, если пользователь вышел без результатов.
func interviewScreen(ctx context.Context, machine *session.Machine, scanner *bufio.Scanner) (bool, error) {
	fmt.Println("\n🎤 Интервью началось! Команды: /voice — голосовой ответ, /repeat — повторить вопрос, /end — завершить.")

	for machine.Phase() == interview.PhaseInterview {
		question, err := machine.CurrentQuestion()
		if err != nil {
			return false, err
		}
		current, total := machine.QuestionProgress()
		fmt.Printf("\n❓ Вопрос %d/%d [%s, %s]:\n%s\n", current, total, question.Type, question.Difficulty, question.Text)
		fmt.Print("Ваш ответ: ")

		input := readLine(scanner)
		switch {
		case input == "/end":
			fmt.Print("Завершить интервью досрочно? (y/n): ")
			if readLine(scanner) != "y" {
				continue
			}
			summary, err := machine.EndInterview(ctx, true)
			if err != nil {
				return false, err
			}
			if summary == nil {
				fmt.Println("🛑 Интервью прервано без ответов — оценка не выставляется.")
				return true, nil
			}
			return false, nil

		case input == "/repeat":
			if err := machine.RepeatQuestion(ctx); err != nil {
				fmt.Println("🔇 " + err.Error())
			}
			continue

		case input == "/voice":
			text, err := voiceAnswer(ctx, machine, scanner)
			if err != nil {
				if errors.Is(err, interview.ErrEmptyTranscript) {
					fmt.Println("🎙 Речь не распознана, попробуйте ещё раз или ответьте текстом.")
				} else {
					fmt.Println("❌ " + err.Error())
				}
				continue
			}
			fmt.Printf("📝 Распознано: %s\n", text)
			fmt.Print("Отправить этот ответ? (y/n): ")
			if readLine(scanner) != "y" {
				continue
			}
			input = text
			fallthrough

		default:
			response, finished, err := machine.SubmitAnswer(ctx, input)
			if err != nil {
				fmt.Println("❌ " + err.Error())
				if !interview.IsValidation(err) {
					fmt.Println("Отправьте ответ повторно.")
				}
				continue
			}
			fmt.Printf("📊 Оценка: %d/100\n💬 %s\n", response.Score, response.Feedback)
			if finished {
				return false, nil
			}
		}
	}

	return false, nil
}

// voiceAnswer записывает и расшифровывает голосовой ответ
func voiceAnswer(ctx context.Context, machine *session.Machine, scanner *bufio.Scanner) (string, error) {
	handle, err := machine.StartVoiceAnswer(ctx)
	if err != nil {
		return "", err
	}

	fmt.Print("🎙 Запись идёт... Нажмите Enter, чтобы остановить.")
	readLine(scanner)

	return machine.FinishVoiceAnswer(ctx, handle)
}

// resultsScreen показывает итог и предлагает повторить интервью
func resultsScreen(ctx context.Context, machine *session.Machine, resultsDir string, store *storage.Store, scanner *bufio.Scanner) (bool, error) {
	summary := machine.Summary()
	sess := machine.Session()
	if summary == nil || sess == nil {
		return false, nil
	}

	fmt.Println("\n🎉 Интервью завершено!")
	fmt.Printf("🏆 Итоговая оценка: %d/100\n", summary.FinalScore)
	fmt.Printf("📈 Отлично: %d • Хорошо: %d • Требует работы: %d\n", summary.Excellent, summary.Good, summary.NeedsWork)
	fmt.Printf("🪙 Потрачено токенов: %d\n", sess.TokensUsed())

	if err := machine.PersistenceWarning(); err != nil {
		fmt.Println("⚠️ Результат показан локально, но сохранить его не удалось:", err)
	}

	// Экспортируем результат в JSON рядом с базой
	records, err := store.ListInterviewRecords(ctx, localUserID)
	if err == nil {
		for _, rec := range records {
			if rec.ID == sess.ID {
				if err := storage.SaveExport(resultsDir, rec); err != nil {
					log.Printf("⚠️ Ошибка экспорта результата: %v", err)
				} else {
					fmt.Printf("💾 Результат сохранён: %s/interview_%s.json\n", resultsDir, rec.ID)
				}
				break
			}
		}
	}

	fmt.Print("\nПовторить интервью? (y/n): ")
	if readLine(scanner) == "y" {
		if err := machine.Retake(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	machine.GoHome()
	return false, nil
}

// ensureJobProfile загружает последний профиль вакансии или создает новый
func ensureJobProfile(ctx context.Context, store *storage.Store) (*interview.JobProfile, error) {
	profile, err := store.LatestJobProfile(ctx)
	if err == nil {
		fmt.Printf("📄 Профиль вакансии: %s\n", profile.Title)
		return profile, nil
	}

	fmt.Println("\n📄 Профиль вакансии не найден, создадим новый.")
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("Должность: ")
	title := readLine(scanner)
	if title == "" {
		return nil, fmt.Errorf("должность не может быть пустой")
	}

	fmt.Print("Описание (одной строкой): ")
	description := readLine(scanner)

	fmt.Print("Навыки (через запятую): ")
	var skills []string
	for _, s := range strings.Split(readLine(scanner), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	fmt.Print("Лет опыта: ")
	years, _ := strconv.Atoi(readLine(scanner))

	fmt.Print("Путь к файлу резюме (Enter — пропустить): ")
	resumeText := ""
	if path := readLine(scanner); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("⚠️ Не удалось прочитать резюме: %v", err)
		} else {
			resumeText = string(data)
		}
	}

	return store.CreateJobProfile(ctx, &interview.JobProfile{
		Title:           title,
		Description:     description,
		Skills:          skills,
		YearsExperience: years,
		ResumeText:      resumeText,
	})
}

func resolvePlan(cfg *config.Config) (config.Plan, error) {
	if flagPlan == "" {
		return cfg.GetFreePlan(), nil
	}
	return cfg.GetPlan(flagPlan)
}

func listResults(cmd *cobra.Command, args []string) error {
	appCfg := config.LoadAppConfig()

	ids, err := storage.ListExports(appCfg.Storage.ResultsDir)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("Сохранённых результатов пока нет. Запустите интервью: interview-trainer run")
		return nil
	}

	fmt.Printf("📂 Сохранённые интервью (%d):\n", len(ids))
	for _, id := range ids {
		record, err := storage.LoadExport(appCfg.Storage.ResultsDir, id)
		if err != nil {
			fmt.Printf("  • %s (ошибка чтения: %v)\n", id, err)
			continue
		}
		score := "—"
		if record.Score != nil {
			score = strconv.Itoa(*record.Score)
		}
		fmt.Printf("  • %s | уровень %d | оценка %s | ответов %d\n",
			record.CreatedAt.Format("2006-01-02 15:04"), record.Level, score, len(record.Responses))
	}
	return nil
}

func listVoices(cmd *cobra.Command, args []string) error {
	voices, err := config.LoadVoices(flagVoices)
	if err != nil {
		return err
	}

	fmt.Printf("🗣 Каталог голосов (%d):\n", len(voices.Voices))
	for _, v := range voices.Voices {
		lang := v.Language
		if lang == "" {
			lang = "любой язык"
		}
		fmt.Printf("  • %s — %s (%s)\n", v.ID, v.Name, lang)
	}
	return nil
}

func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func printStats(stats *metrics.Metrics) {
	snapshot := stats.GetSnapshot()
	fmt.Println("\n📊 Статистика сессии:")
	fmt.Printf("• Интервью начато: %d, завершено: %d, прервано: %d\n",
		snapshot.SessionsStarted, snapshot.SessionsCompleted, snapshot.SessionsAborted)
	fmt.Printf("• Вопросов задано: %d, ответов оценено: %d\n",
		snapshot.QuestionsAsked, snapshot.AnswersEvaluated)
	fmt.Printf("• Озвучек: %d, расшифровок: %d\n",
		snapshot.NarrationsPlayed, snapshot.TranscriptionsDone)
	fmt.Printf("• Токенов потрачено: %d\n", snapshot.TokensConsumed)
}
