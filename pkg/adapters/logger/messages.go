package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Render orchestration (info)
		"Starting render of %s":                 "%s のレンダリングを開始します",
		"Captured %d frames (%s)":               "%d フレームを取り込みました (%s)",
		"Mix ready: %d events, peak %.3f":       "ミックス完了: %d イベント, ピーク %.3f",
		"Render completed successfully":         "レンダリングが正常に完了しました",
		"Render completed without audio":        "音声なしでレンダリングが完了しました",
		"Output saved to %s":                    "出力を %s に保存しました",
		"Output saved to %s (%d tracks, %.2fs)": "出力を %s に保存しました (%d トラック, %.2f秒)",
		"Summary saved to %s":                   "サマリーを %s に保存しました",
		"Debug output in %s":                    "デバッグ出力: %s",
		"Failed to capture video: %v":           "動画の取り込みに失敗しました: %v",
		"Failed to mix audio: %v":               "音声のミックスに失敗しました: %v",
		"Failed to combine streams: %v":         "ストリームの結合に失敗しました: %v",
		"Failed to write summary: %s":           "サマリーの書き込みに失敗しました: %s",
		"Mix ended with: %v":                    "ミックスの終了: %v",
		"Could not remove %s: %v":               "%s を削除できませんでした: %v",

		// Sound store and mixdown
		"Loaded sound %s: %.3fs":                   "サウンド %s を読み込みました: %.3f秒",
		"Decoded %d sounds":                        "%d 個のサウンドをデコードしました",
		"Decoding %d bytes as %s":                  "%d バイトを %s としてデコード中",
		"Mixed %d events into %s (%.2fs)":          "%d イベントを %s にミックスしました (%.2f秒)",
		"Mix saved to %s: %d events, peak %.3f":    "ミックスを %s に保存しました: %d イベント, ピーク %.3f",
		"%d samples exceed full scale (peak %.3f)": "%d サンプルがフルスケールを超えています (ピーク %.3f)",

		// Conversion and combine
		"Converting %s (%s) to %s":                                      "%s (%s) を %s に変換中",
		"Combining %s with %d audio streams into %s":                    "%s と %d 本の音声を %s に結合中",
		"%s has no audio track":                                         "%s に音声トラックがありません",
		"Could not inspect %s: %v":                                      "%s を解析できませんでした: %v",
		"Unrecognized audio container in %s, leaving it to the encoder": "%s の音声コンテナを判別できません。エンコーダーに任せます",

		// Encoder resolution and processes
		"Using encoder %s":                  "エンコーダー %s を使用します",
		"Using system encoder %s":           "システムのエンコーダー %s を使用します",
		"System encoder %s failed -version": "システムのエンコーダー %s で -version が失敗しました",
		"Adding execute permission to %s":   "%s に実行権限を付与します",
		"Starting encoder: %s %s":           "エンコーダーを起動: %s %s",
		"Running encoder: %s %s":            "エンコーダーを実行: %s %s",

		// Encoder sessions
		"Encoder session %s started (%dx%d @ %d fps, %s)": "エンコードセッション %s を開始しました (%dx%d @ %d fps, %s)",
		"Finishing encoder session %s after %d frames":    "エンコードセッション %s を %d フレームで終了します",
		"Encoder session %s closed after %d frames":       "エンコードセッション %s を %d フレームで閉じました",
		"Encoder session %s aborted after %d frames":      "エンコードセッション %s を %d フレームで中止しました",
		"Encoder session %s failed: %v":                   "エンコードセッション %s が失敗しました: %v",
		"Checkpoint at %d frames":                         "%d フレーム経過",

		// Frame ingestion (server component)
		"Waiting for frames on ws://%s":                  "ws://%s でフレームを待機中",
		"Producer connected from %s":                     "%s から送信元が接続しました",
		"Producer disconnected: %v":                      "送信元が切断しました: %v",
		"Rejected producer connection: %v":               "送信元の接続を拒否しました: %v",
		"Closing extra producer connection from %s (%s)": "%s からの余分な接続を閉じます (%s)",
		"Frame %d rejected: %v":                          "フレーム %d を拒否しました: %v",
		"Finish after frame error: %v":                   "フレームエラー後に終了します: %v",
		"Ignoring text message %q":                       "テキストメッセージ %q を無視します",
		"Encoder did not finish within %s, aborting":     "%s 以内にエンコーダーが終了しないため中止します",
		"Abort: %v":                           "中止: %v",
		"No producer connected within %s":     "%s 以内に送信元が接続しませんでした",
		"No frame for %s, finishing":          "%s の間フレームがないため終了します",
		"Frame server stopped: %v":            "フレームサーバーが停止しました: %v",
		"Could not send %s: %v":               "%s を送信できませんでした: %v",
		"Frame stream closed: %d frames (%s)": "フレームストリームを閉じました: %d フレーム (%s)",
		"Captured %d frames to %s (%s)":       "%d フレームを %s に取り込みました (%s)",
		"No frames received, %s is empty":     "フレームを受信していないため %s は空です",
		"Received %d of %d expected frames":   "%d フレームを受信しました (予定 %d フレーム)",

		// Producers (browser and testpattern components)
		"Opening %s":                        "%s を開いています",
		"Page console.%s: %s":               "ページ console.%s: %s",
		"Page exception: %s":                "ページの例外: %s",
		"Page finished streaming":           "ページの送信が完了しました",
		"Streaming %d test frames at %dx%d": "%d 枚のテストフレームを %dx%d で送信中",
	})
}
