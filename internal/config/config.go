package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"` // 自动分队可能比较耗时
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 14 天，单位为小时
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD,required"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Balancer struct {
		DefaultIterations     int               `env:"DEFAULT_ITERATIONS" envDefault:"5000"`
		MaxIterations         int               `env:"MAX_ITERATIONS" envDefault:"200000"`
		DefaultNumTeams       int               `env:"DEFAULT_NUM_TEAMS" envDefault:"2"`
		DefaultSeed           int64             `env:"DEFAULT_SEED" envDefault:"42"`
		Timeout               int               `env:"TIMEOUT" envDefault:"30"`
		CacheExpiration       int               `env:"CACHE_EXPIRATION" envDefault:"600"`
		SkillImbalanceWeight  float64           `env:"SKILL_IMBALANCE_WEIGHT" envDefault:"1.0"`
		RolePenaltyWeight     float64           `env:"ROLE_PENALTY_WEIGHT" envDefault:"1.0"`
		PartyPenaltyWeight    float64           `env:"PARTY_PENALTY_WEIGHT" envDefault:"1.0"`
		FairnessPenaltyWeight float64           `env:"FAIRNESS_PENALTY_WEIGHT" envDefault:"0.7"`
		Roles                 []string          `env:"ROLES" envDefault:"duelist,controller,initiator,sentinel"`
		RoleRequirements      map[string]string `env:"ROLE_REQUIREMENTS" envDefault:"duelist:1-2,controller:1-1,initiator:1-2,sentinel:1-2"`
	} `envPrefix:"BALANCER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	// 分队相关的配置在启动时就要校验，不能等到分队的时候才发现配置错误
	schema, err := cfg.RoleSchema()
	if err != nil {
		return nil, err
	}
	if _, err := balancer.NewCostModel(schema, cfg.Weights()); err != nil {
		return nil, err
	}
	if cfg.Balancer.DefaultNumTeams <= 0 {
		return nil, fmt.Errorf("%w: BALANCER_DEFAULT_NUM_TEAMS = %d", balancer.ErrInvalidTeamCount, cfg.Balancer.DefaultNumTeams)
	}
	if cfg.Balancer.DefaultIterations < 0 || cfg.Balancer.DefaultIterations > cfg.Balancer.MaxIterations {
		return nil, fmt.Errorf("%w: BALANCER_DEFAULT_ITERATIONS = %d，应在 0 到 %d 之间",
			balancer.ErrInvalidIterations, cfg.Balancer.DefaultIterations, cfg.Balancer.MaxIterations)
	}

	return cfg, nil
}

func (cfg *Config) RoleSchema() (*balancer.RoleSchema, error) {
	return balancer.ParseRoleSchema(cfg.Balancer.Roles, cfg.Balancer.RoleRequirements)
}

func (cfg *Config) Weights() balancer.Weights {
	return balancer.Weights{
		SkillImbalance: cfg.Balancer.SkillImbalanceWeight,
		Role:           cfg.Balancer.RolePenaltyWeight,
		Party:          cfg.Balancer.PartyPenaltyWeight,
		Fairness:       cfg.Balancer.FairnessPenaltyWeight,
	}
}
