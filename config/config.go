package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	InitMode bool   `env:"INITMODE" envDefault:"false"` // Chế độ khởi tạo: seed admin và cấu hình mẫu
	Address  string `env:"ADDRESS" envDefault:"8080"`   // Cổng server

	// JWT
	JwtSecret               string `env:"JWT_SECRET,required"`                       // Bí mật JWT
	JwtExpiresHours         int    `env:"JWT_EXPIRES_HOURS" envDefault:"24"`          // Thời hạn token đăng nhập
	VerifyTokenExpiresHours int    `env:"VERIFY_TOKEN_EXPIRES_HOURS" envDefault:"168"` // Thời hạn token xác minh tài khoản (7 ngày)

	// MongoDB
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"bot_admin"`

	// Redis (để trống REDIS_ADDR = tắt cache)
	Redis_Addr      string `env:"REDIS_ADDR"`
	Redis_Password  string `env:"REDIS_PASSWORD"`
	Redis_DB        int    `env:"REDIS_DB" envDefault:"0"`
	MinimalCacheTTL int    `env:"MINIMAL_CACHE_TTL" envDefault:"300"` // Giây

	// HTTP
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = tắt)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MetricsEnabled        bool   `env:"METRICS_ENABLED" envDefault:"true"` // Mở endpoint /metrics

	// SMTP (để trống SMTP_HOST = chỉ ghi log, không gửi mail)
	SMTP_Host     string `env:"SMTP_HOST"`
	SMTP_Port     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTP_Username string `env:"SMTP_USERNAME"`
	SMTP_Password string `env:"SMTP_PASSWORD"`
	MailFrom      string `env:"MAIL_FROM" envDefault:"no-reply@bot-admin.local"`
	FrontendURL   string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Seed
	SeedTemplatePath    string `env:"SEED_TEMPLATE_PATH" envDefault:"config/seed/bot_config.yaml"`
	SeedAdminEmail      string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@system.com"`
	SeedAdminPassword   string `env:"SEED_ADMIN_PASSWORD"`
	SeedFinanceEmail    string `env:"SEED_FINANCE_EMAIL" envDefault:"finance@system.com"`
	SeedFinancePassword string `env:"SEED_FINANCE_PASSWORD"`

	// TLS/HTTPS
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// MinimalCacheDuration trả về TTL của cache minimal config, mặc định 5 phút nếu cấu hình <= 0
func (c *Configuration) MinimalCacheDuration() time.Duration {
	if c == nil || c.MinimalCacheTTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.MinimalCacheTTL) * time.Second
}

// RootDir trả về thư mục gốc của project (thư mục chứa config/env), rỗng nếu không tìm thấy
func RootDir() string {
	currentDir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "config", "env")); err == nil {
			return currentDir
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// ResolvePath trả về đường dẫn tuyệt đối tính từ thư mục gốc project nếu path là tương đối
func ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if root := RootDir(); root != "" {
		return filepath.Join(root, path)
	}
	return path
}

// getEnvPath trả về đường dẫn đến file env dựa trên GO_ENV (mặc định development)
func getEnvPath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}
	root := RootDir()
	if root == "" {
		return ""
	}
	return filepath.Join(root, "config", "env", fmt.Sprintf("%s.env", goEnv))
}

// NewConfig đọc file env (nếu có) rồi parse biến môi trường vào Configuration.
// Trả về nil nếu thiếu biến bắt buộc.
func NewConfig() *Configuration {
	if envPath := getEnvPath(); envPath != "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	} else {
		fmt.Printf("Không tìm thấy thư mục config/env, chỉ dùng biến môi trường\n")
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}
	return &cfg
}
