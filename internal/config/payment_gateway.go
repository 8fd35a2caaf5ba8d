package config

type PaymentConfig struct {
	Provider    string          `yaml:"provider"`
	Stripe      *StripeConfig   `yaml:"stripe"`
	Razorpay    *RazorpayConfig `yaml:"razorpay"`
	Currency    string          `yaml:"currency"`
	PlatformFee float64         `yaml:"platform_fee"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Provider: getEnv("PAYMENT_PROVIDER", "simulated"),
		Stripe: &StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		},
		Razorpay: &RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Currency:    getEnv("PAYMENT_CURRENCY", "INR"),
		PlatformFee: getEnvAsFloat64("PLATFORM_FEE_AMOUNT", 10),
	}
}
