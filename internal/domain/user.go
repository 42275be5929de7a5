package domain

import "time"

// рейтинг, с которого стартует игрок в каждом типе игры
const DefaultRating = 1200

// Профиль игрока. ID выдает провайдер идентификации, ядро ему доверяет.
// Ratings, GamesPlayed и GamesWon всегда имеют одинаковый набор ключей (типы игр).
type User struct {
	ID          string         `db:"id" json:"id"`
	DisplayName string         `db:"display_name" json:"display_name"`
	Ratings     map[string]int `db:"ratings" json:"ratings"`
	GamesPlayed map[string]int `db:"games_played" json:"games_played"`
	GamesWon    map[string]int `db:"games_won" json:"games_won"`
	Version     int64          `db:"version" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// создает пустой профиль без записей рейтинга
func NewUser(id, displayName string) *User {
	return &User{
		ID:          id,
		DisplayName: displayName,
		Ratings:     make(map[string]int),
		GamesPlayed: make(map[string]int),
		GamesWon:    make(map[string]int),
	}
}

// Rating возвращает рейтинг игрока в типе игры (DefaultRating, если он еще не играл)
func (u *User) Rating(gameType string) int {
	if r, ok := u.Ratings[gameType]; ok {
		return r
	}
	return DefaultRating
}

// ApplyResult записывает итог завершенного матча. Запись рейтинга появляется
// в тот момент, когда счетчик сыгранных игр впервые становится ненулевым.
func (u *User) ApplyResult(gameType string, delta int, won bool) {
	if u.Ratings == nil {
		u.Ratings = make(map[string]int)
	}
	if u.GamesPlayed == nil {
		u.GamesPlayed = make(map[string]int)
	}
	if u.GamesWon == nil {
		u.GamesWon = make(map[string]int)
	}

	if _, ok := u.Ratings[gameType]; !ok {
		u.Ratings[gameType] = DefaultRating
		u.GamesPlayed[gameType] = 0
		u.GamesWon[gameType] = 0
	}

	u.Ratings[gameType] += delta
	u.GamesPlayed[gameType]++
	if won {
		u.GamesWon[gameType]++
	}
}

// глубокая копия, чтобы сервис не мутировал то, что прочитал из хранилища
func (u *User) Clone() *User {
	c := *u
	c.Ratings = cloneCounts(u.Ratings)
	c.GamesPlayed = cloneCounts(u.GamesPlayed)
	c.GamesWon = cloneCounts(u.GamesWon)
	return &c
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Строка таблицы лидеров
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	GamesPlayed int    `json:"games_played"`
	GamesWon    int    `json:"games_won"`
}
