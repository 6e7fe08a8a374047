package config

// Config 配置主体
type Config struct {
	Server                   ServerConfig            `mapstructure:"server"`
	Log                      LogConfig               `mapstructure:"log"`
	Auth                     AuthConfig              `mapstructure:"auth"`
	DB                       DBConfig                `mapstructure:"database"`
	Redis                    RedisConfig             `mapstructure:"redis"`
	Mongo                    MongoConfig             `mapstructure:"mongo"`
	Cache                    CacheConfig             `mapstructure:"cache"`
	Jobs                     JobsConfig              `mapstructure:"jobs"`
	Kafka                    KafkaConfig             `mapstructure:"kafka"`
	KafkaUserFollowsConsumer KafkaUserFollowConsumer `mapstructure:"kafka_user_follow_consumer"`
	KafkaPostShareConsumer   KafkaPostShareConsumer  `mapstructure:"kafka_post_share_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig 鉴权配置，Token 由独立的账号服务签发
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// CacheConfig 缓存过期时间，单位秒
type CacheConfig struct {
	ReactionStatsTTL int `mapstructure:"reaction_stats_ttl"`
}

// JobsConfig 定时任务 cron 表达式 (带秒)
type JobsConfig struct {
	ReactionReconcile string `mapstructure:"reaction_reconcile"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaUserFollowConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaPostShareConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
