package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Recorder (info)
		"Recording %s":                    "%s を録画中",
		"Recording %s from %s source to %s": "%s を %s ソースから %s に録画中",
		"Source finished after %d frames": "ソースが %d フレームで終了しました",
		"Recording finished: %d frames delivered, %d encoded, %d dropped, %d bytes": "録画完了: 受信 %d フレーム, エンコード %d, 破棄 %d, %d バイト",
		"Output saved to %s (%d bytes, %d key frames, %s)":                          "出力を %s に保存しました (%d バイト, キーフレーム %d, %s)",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Session
		"Encoder configured: %s capture, %s encoded, %d bps, %d fps": "エンコーダ設定完了: キャプチャ %s, エンコード %s, %d bps, %d fps",
		"Encoder started": "エンコーダを開始しました",
		"Encoder stopped: %d frames fed, %d dropped, %d bytes written": "エンコーダ停止: 投入 %d フレーム, 破棄 %d, 書き込み %d バイト",
		"Discarded %d stale frames":       "古いフレームを %d 件破棄しました",
		"Frame dropped, queue full":       "キューが満杯のためフレームを破棄しました",
		"Wrote %s unit: %d bytes, pts %d": "%s ユニットを書き込みました: %d バイト, pts %d",

		// ffmpeg codec
		"Started %s %dx%d":         "%s を起動しました %dx%d",
		"ffmpeg output ended: %v": "ffmpeg の出力が終了しました: %v",

		// Warnings
		"Encoding iteration failed: %v":          "エンコード処理に失敗しました: %v",
		"Failed to return input slot: %v":        "入力スロットの返却に失敗しました: %v",
		"Failed to write frame: %v":              "フレームの書き込みに失敗しました: %v",
		"Queue not drained, %d frames discarded": "キューが空になりませんでした。%d フレームを破棄します",
		"ffmpeg did not exit within %v, killing": "ffmpeg が %v 以内に終了しないため強制終了します",

		// Teardown
		"Failed to close sink: %v":      "出力の終了に失敗しました: %v",
		"Failed to stop encoder: %v":    "エンコーダの停止に失敗しました: %v",
		"Failed to release encoder: %v": "エンコーダの解放に失敗しました: %v",

		// Summary
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Errors
		"Frame source failed: %v": "フレームソースが失敗しました: %v",
	})
}
