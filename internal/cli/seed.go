package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bot_admin/config"
	authmodels "bot_admin/internal/api/auth/models"
	authsvc "bot_admin/internal/api/auth/service"
	botconfigsvc "bot_admin/internal/api/botconfig/service"
	"bot_admin/internal/api/initsvc"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/cache"
	"bot_admin/internal/database"
	"bot_admin/internal/global"
	"bot_admin/internal/notification"
	"bot_admin/internal/rbac"
)

const (
	usersCollection      = "auth_users"
	botConfigsCollection = "bot_configs"
)

// seedEnv là các kết nối và service dùng cho lệnh seed
type seedEnv struct {
	cfg  *config.Configuration
	init *initsvc.InitService
	stop func()
}

// openSeedEnv đọc cấu hình, kết nối MongoDB và Redis (nếu có) rồi dựng InitService
func openSeedEnv(ctx context.Context, withTemplate bool) (*seedEnv, error) {
	global.InitValidator()
	cfg := config.NewConfig()
	if cfg == nil {
		return nil, errors.New("failed to load configuration")
	}

	client, err := database.GetInstance(cfg)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB_DBName)
	if err := database.EnsureCollections(ctx, db, usersCollection, botConfigsCollection); err != nil {
		_ = database.CloseInstance(client)
		return nil, err
	}
	if err := database.CreateIndexes(ctx, db.Collection(usersCollection), authmodels.User{}); err != nil {
		_ = database.CloseInstance(client)
		return nil, err
	}

	tokens := authsvc.NewTokenService(cfg.JwtSecret,
		time.Duration(cfg.JwtExpiresHours)*time.Hour,
		time.Duration(cfg.VerifyTokenExpiresHours)*time.Hour)
	users := authsvc.NewUserService(authsvc.NewMongoUserStore(db.Collection(usersCollection)), tokens,
		notification.NewMailer(cfg), rbac.DefaultTable())

	var configs *botconfigsvc.BotConfigService
	closers := []func(){users.Close}
	if withTemplate {
		tmpl, err := botconfig.LoadTemplate(config.ResolvePath(cfg.SeedTemplatePath))
		if err != nil {
			users.Close()
			_ = database.CloseInstance(client)
			return nil, err
		}
		redisClient, err := database.GetRedisClient(cfg)
		if err != nil {
			redisClient = nil
		}
		minimal := cache.NewMinimalCache(redisClient, cfg.MinimalCacheDuration())
		configs = botconfigsvc.NewBotConfigService(
			botconfigsvc.NewMongoRepository(db.Collection(botConfigsCollection)), minimal, nil, tmpl)
		if redisClient != nil {
			closers = append(closers, func() { _ = redisClient.Close() })
		}
	}

	return &seedEnv{
		cfg:  cfg,
		init: initsvc.NewInitService(users, configs),
		stop: func() {
			for _, c := range closers {
				c()
			}
			_ = database.CloseInstance(client)
		},
	}, nil
}

// NewSeedCommand tạo nhóm lệnh "seed"
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create initial data in MongoDB",
	}
	cmd.AddCommand(newSeedUsersCommand())
	cmd.AddCommand(newSeedConfigCommand())
	return cmd
}

func newSeedUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Create the system admin and finance accounts from SEED_* settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			env, err := openSeedEnv(ctx, false)
			if err != nil {
				return err
			}
			defer env.stop()

			seeds := []initsvc.SeedUser{
				{FirstName: "Admin", Email: env.cfg.SeedAdminEmail, Password: env.cfg.SeedAdminPassword, Role: rbac.RoleSuperAdmin},
				{FirstName: "Finance", Email: env.cfg.SeedFinanceEmail, Password: env.cfg.SeedFinancePassword, Role: rbac.RoleFinance},
			}
			created, err := env.init.InitUsers(ctx, seeds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d user(s) created\n", created)
			return nil
		},
	}
}

func newSeedConfigCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "config <merchant-id>...",
		Short: "Create bot configs from the seed template for the given merchants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			env, err := openSeedEnv(ctx, true)
			if err != nil {
				return err
			}
			defer env.stop()

			actor := initsvc.SystemActor(env.cfg.SeedAdminEmail)
			for _, merchantID := range args {
				created, err := env.init.InitMerchantConfig(ctx, merchantID, description, actor)
				if err != nil {
					return fmt.Errorf("seed config %s: %w", merchantID, err)
				}
				status := "exists"
				if created {
					status = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", merchantID, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "meta.description for new configs")
	return cmd
}
