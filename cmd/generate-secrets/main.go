package main

import (
	"fmt"
	"log"

	"github.com/dogubilet/ticket-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for Doğu Bilet")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateSecret(32) // 256-bit
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("✅ Secret generated successfully!")
	fmt.Println()
	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep this secret safe and never commit it to version control!")
	fmt.Println("===========================================")
}
