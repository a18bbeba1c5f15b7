package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meedi8/backend/internal/phase"
	"meedi8/backend/internal/storage"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "resolve-room":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin resolve-room <room_id>")
			os.Exit(1)
		}
		roomID := os.Args[2]
		if err := resolveRoom(storageSvc, roomID); err != nil {
			log.Fatalf("Error resolving room: %v", err)
		}
		fmt.Printf("Room %s has been resolved.\n", roomID)
	case "delete-room":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin delete-room <room_id>")
			os.Exit(1)
		}
		roomID := os.Args[2]
		if err := storageSvc.DeleteRoom(os.Args[2]); err != nil {
			log.Fatalf("Error deleting room: %v", err)
		}
		fmt.Printf("Room %s and its transcript have been deleted.\n", roomID)
	case "grant-unlimited":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin grant-unlimited <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if err := setUnlimited(storageSvc, userID, true); err != nil {
			log.Fatalf("Error granting unlimited rooms: %v", err)
		}
		fmt.Printf("User %s is no longer limited by the free tier.\n", userID)
	case "revoke-unlimited":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin revoke-unlimited <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if err := setUnlimited(storageSvc, userID, false); err != nil {
			log.Fatalf("Error revoking unlimited rooms: %v", err)
		}
		fmt.Printf("User %s is back on the free tier.\n", userID)
	case "link-telegram":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin link-telegram <user_id> <telegram_chat_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		chatID, err := strconv.ParseInt(os.Args[3], 10, 64)
		if err != nil {
			fmt.Println("Invalid chat ID. Please provide an integer.")
			os.Exit(1)
		}
		if err := linkTelegram(storageSvc, userID, chatID); err != nil {
			log.Fatalf("Error linking telegram account: %v", err)
		}
		fmt.Printf("User %s is now linked to Telegram chat %d.\n", userID, chatID)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// resolveRoom force-moves a stuck room to its terminal phase.
func resolveRoom(s storage.Storage, roomID string) error {
	if _, err := s.GetRoomByID(roomID); err != nil {
		return err
	}
	return s.UpdateRoomPhase(roomID, phase.Resolved)
}

func setUnlimited(s storage.Storage, userID string, unlimited bool) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.UnlimitedRooms = unlimited
	return s.SaveUser(user)
}

func linkTelegram(s storage.Storage, userID string, chatID int64) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.TelegramID = chatID
	return s.SaveUser(user)
}
