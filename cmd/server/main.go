package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"bot_admin/config"
	"bot_admin/internal/database"
	"bot_admin/internal/global"
	"bot_admin/internal/logger"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng, cấu hình đọc từ biến LOG_*
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// listen chạy server HTTP hoặc HTTPS tùy cấu hình, block tới khi server dừng
func listen(app *fiber.App) error {
	cfg := global.MongoDB_ServerConfig
	address := ":" + cfg.Address
	log := logger.GetAppLogger()

	if !cfg.EnableTLS || cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
		log.WithFields(map[string]interface{}{"address": address, "protocol": "HTTP"}).Info("Starting server with HTTP")
		return app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
	}

	certPath := config.ResolvePath(cfg.TLSCertFile)
	keyPath := config.ResolvePath(cfg.TLSKeyFile)
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return fmt.Errorf("load TLS certificate: %w", err)
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("create listener: %w", err)
	}
	tlsListener := tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	log.WithFields(map[string]interface{}{"address": address, "cert": certPath}).Info("Starting server with HTTPS/TLS")
	return app.Listener(tlsListener, fiber.ListenConfig{DisableStartupMessage: true})
}

func main() {
	initLogger()
	defer logger.Close()

	InitGlobal()
	InitRegistry()

	log := logger.GetAppLogger()
	users, err := NewUserService()
	if err != nil {
		log.Fatalf("Failed to create user service: %v", err)
	}
	defer users.Close()

	InitDefaultData(users)

	app := InitFiberApp(users)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	if err := listen(app); err != nil {
		log.WithError(err).Error("Server stopped with error")
	}

	if global.Redis_Client != nil {
		_ = global.Redis_Client.Close()
	}
	_ = database.CloseInstance(global.MongoDB_Session)
	log.Info("Server stopped")
}
