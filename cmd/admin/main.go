package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cvforge/internal/auth"
	"cvforge/internal/config"
	"cvforge/internal/cv"
	"cvforge/internal/database"
)

func main() {
	var (
		username = flag.String("username", "", "初始管理员用户名（必填）")
		dbHost   = flag.String("db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
		dbPort   = flag.Int("db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
		dbName   = flag.String("db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
		dbUser   = flag.String("db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
		dbPass   = flag.String("db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
		sslMode  = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
	)
	flag.Parse()

	u := strings.TrimSpace(*username)
	if u == "" {
		log.Fatal("missing required flag: --username")
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(
		&database.User{},
		&database.Project{},
		&database.CVDocument{},
		&database.CoverLetter{},
		&database.Template{},
		&database.Asset{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	if err := seedDefaultTemplates(db); err != nil {
		log.Fatalf("seed templates: %v", err)
	}

	var existing database.User
	switch err := db.Where("username = ?", u).First(&existing).Error; {
	case err == nil:
		log.Fatalf("user %q already exists", u)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query user: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := database.User{
		Username:           u,
		PasswordHash:       hashed,
		MustChangePassword: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("已创建初始管理员账号（首次登录需强制改密）：\n")
	fmt.Printf("用户名: %s\n", u)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：请立即登录并修改密码（该密码仅显示一次）。\n")
}

// seedDefaultTemplates 写入内置模板；只在模板表为空时执行。
func seedDefaultTemplates(db *gorm.DB) error {
	var count int64
	if err := db.Model(&database.Template{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if count > 0 {
		log.Printf("templates already seeded, skipping")
		return nil
	}

	type seed struct {
		name        string
		category    string
		description string
		isPremium   bool
		config      cv.TemplateConfig
	}

	seeds := []seed{
		{
			name:        "Modern Professional",
			category:    "professional",
			description: "Clean, modern design perfect for corporate roles",
			config: cv.TemplateConfig{
				Colors: cv.TemplateColors{Primary: "#2563eb", Secondary: "#64748b", Text: "#1e293b"},
				Fonts:  cv.TemplateFonts{Heading: "Inter", Body: "Inter"},
				Layout: cv.LayoutSingleColumn,
			},
		},
		{
			name:        "Creative Designer",
			category:    "creative",
			description: "Bold, creative layout for design professionals",
			isPremium:   true,
			config: cv.TemplateConfig{
				Colors: cv.TemplateColors{Primary: "#7c3aed", Secondary: "#a855f7", Text: "#374151"},
				Fonts:  cv.TemplateFonts{Heading: "Poppins", Body: "Inter"},
				Layout: cv.LayoutTwoColumn,
			},
		},
		{
			name:        "Technical Engineer",
			category:    "technical",
			description: "Structured format ideal for engineering roles",
			config: cv.TemplateConfig{
				Colors: cv.TemplateColors{Primary: "#059669", Secondary: "#6b7280", Text: "#111827"},
				Fonts:  cv.TemplateFonts{Heading: "JetBrains Mono", Body: "Inter"},
				Layout: cv.LayoutSingleColumn,
			},
		},
		{
			name:        "Academic Research",
			category:    "academic",
			description: "Traditional format for academic and research positions",
			isPremium:   true,
			config: cv.TemplateConfig{
				Colors: cv.TemplateColors{Primary: "#dc2626", Secondary: "#9ca3af", Text: "#1f2937"},
				Fonts:  cv.TemplateFonts{Heading: "Times New Roman", Body: "Times New Roman"},
				Layout: cv.LayoutSingleColumn,
			},
		},
		{
			name:        "Minimalist Modern",
			category:    "modern",
			description: "Ultra-clean design for contemporary professionals",
			isPremium:   true,
			config: cv.TemplateConfig{
				Colors: cv.TemplateColors{Primary: "#000000", Secondary: "#6b7280", Text: "#374151"},
				Fonts:  cv.TemplateFonts{Heading: "Inter", Body: "Inter"},
				Layout: cv.LayoutTwoColumn,
			},
		},
	}

	for _, s := range seeds {
		raw, err := json.Marshal(s.config)
		if err != nil {
			return fmt.Errorf("marshal template config %q: %w", s.name, err)
		}
		tpl := database.Template{
			Name:        s.name,
			Category:    s.category,
			Description: s.description,
			IsPremium:   s.isPremium,
			Config:      datatypes.JSON(raw),
		}
		if err := db.Create(&tpl).Error; err != nil {
			return fmt.Errorf("create template %q: %w", s.name, err)
		}
	}
	log.Printf("seeded %d default templates", len(seeds))
	return nil
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("DB_NAME")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("DB_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("DB_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
