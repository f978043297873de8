package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はローカルゲートウェイを起動することを示す。
	CommandServe Command = "serve"
	// CommandBootstrap は起動処理を1回だけ実行し、診断結果を出力して終了することを示す。
	CommandBootstrap Command = "bootstrap"
	// CommandMigrate はキーバリューストア用のマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "bootstrap":
		return CommandBootstrap
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
